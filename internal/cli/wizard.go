package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/Innovate-group/tiendanubecli/internal/transfer"
)

// runWizard prompts for the store's FTP credentials and returns a config
// ready to persist. Defaults come from any previously saved values.
func runWizard(defaults transfer.Config) (transfer.Config, error) {
	cfg := defaults.WithDefaults()

	host, err := askInput("FTP host:", cfg.Host, survey.Required)
	if err != nil {
		return transfer.Config{}, err
	}
	cfg.Host = host

	port, err := askPort(cfg.Port)
	if err != nil {
		return transfer.Config{}, err
	}
	cfg.Port = port

	user, err := askInput("FTP user:", cfg.User, survey.Required)
	if err != nil {
		return transfer.Config{}, err
	}
	cfg.User = user

	password, err := askPassword("FTP password:")
	if err != nil {
		return transfer.Config{}, err
	}
	cfg.Password = password

	remotePath, err := askInput("Remote theme path:", cfg.RemotePath, nil)
	if err != nil {
		return transfer.Config{}, err
	}
	cfg.RemotePath = remotePath

	secure := cfg.Secure
	if err := survey.AskOne(&survey.Confirm{
		Message: "Use explicit FTPS (TLS)?",
		Default: secure,
	}, &secure); err != nil {
		return transfer.Config{}, err
	}
	cfg.Secure = secure

	return cfg, nil
}

func askInput(message, defaultValue string, validator survey.Validator) (string, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}

	opts := []survey.AskOpt{}
	if validator != nil {
		opts = append(opts, survey.WithValidator(validator))
	}
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func askPassword(message string) (string, error) {
	var answer string
	prompt := &survey.Password{Message: message}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return answer, nil
}

func askPort(defaultPort int) (int, error) {
	portStr := strconv.Itoa(defaultPort)

	prompt := &survey.Input{
		Message: "FTP port:",
		Default: portStr,
	}

	validator := func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return errors.New("invalid input")
		}

		num, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return errors.New("must be a number")
		}
		if num < 1 || num > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		return nil
	}

	if err := survey.AskOne(prompt, &portStr, survey.WithValidator(validator)); err != nil {
		return 0, err
	}

	port, _ := strconv.Atoi(strings.TrimSpace(portStr))
	return port, nil
}
