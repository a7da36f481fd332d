// Package transfer moves theme files between a local directory and a
// store's FTP server.
//
// This package provides:
//   - FTP/FTPS session dialing with a narrow Session interface
//   - A single-connection manager with idle-timeout recycling
//   - Retry logic with exponential backoff for transient failures
//   - Error classification into a small, stable code taxonomy
//   - Recursive upload and download of whole theme trees
//
// # Basic Usage
//
// Create a service and upload a file:
//
//	cfg := transfer.Config{
//		Host:     "ftp.example.com",
//		User:     "store",
//		Password: "secret",
//	}
//
//	manager := transfer.NewConnManager(cfg, transfer.Dial, log)
//	service := transfer.NewService(manager, cfg, log)
//	defer service.Shutdown()
//
//	err := service.UploadFile(ctx, "layouts/home.tpl", "/theme/layouts/home.tpl")
//
// # Whole-Tree Sync
//
// For full theme transfers, use the recursive operations:
//
//	err := service.UploadAll(ctx, "./theme", "/theme")
//	err = service.DownloadAll(ctx, "/theme", "./theme")
//
// Individual file failures during a tree transfer are logged and
// skipped; only a missing root aborts the run.
package transfer
