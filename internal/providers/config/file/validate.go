package file

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/resource"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints plus the cross-field rules the tags
// cannot express.
func Validate(cfg config.Config) error {
	if err := validate.Struct(cfg); err != nil {
		return validationError("invalid configuration", describeValidation(err))
	}

	if err := validateCredentials(cfg.Credentials); err != nil {
		return err
	}

	if cfg.Target.MinVersion != "" {
		if _, err := semver.NewConstraint(cfg.Target.MinVersion); err != nil {
			return validationError(fmt.Sprintf("target.min-version %q is not a version constraint", cfg.Target.MinVersion), err)
		}
	}

	if _, err := ActionTable(cfg); err != nil {
		return err
	}
	return nil
}

func validateCredentials(credentials config.Credentials) error {
	if countSet(credentials.Token != "", credentials.SQL != nil, credentials.File != nil) != 1 {
		return validationError("credentials must define exactly one of token, sql, file", nil)
	}

	if credentials.File != nil {
		fileStore := credentials.File
		if countSet(
			fileStore.Key != "",
			fileStore.KeyFile != "",
			fileStore.Passphrase != "",
			fileStore.PassphraseFile != "",
		) != 1 {
			return validationError("credentials.file must define exactly one of key, key-file, passphrase, passphrase-file", nil)
		}
	}
	return nil
}

// ActionTable merges configured action overrides over the built-in table.
func ActionTable(cfg config.Config) (resource.ActionTable, error) {
	overrides := resource.ActionTable{}
	for path, verbs := range cfg.Actions {
		if resource.FilterPath(path) == "" {
			return nil, validationError("actions: empty resource path", nil)
		}
		mapped := make(map[resource.Action]string, len(verbs))
		for name, verb := range verbs {
			action, ok := resource.ParseAction(name)
			if !ok {
				return nil, validationError(fmt.Sprintf("actions.%s: unknown action %q", path, name), nil)
			}
			if strings.TrimSpace(verb) == "" {
				return nil, validationError(fmt.Sprintf("actions.%s.%s: verb is empty", path, name), nil)
			}
			mapped[action] = verb
		}
		overrides[path] = mapped
	}
	return resource.DefaultActionTable().Merge(overrides), nil
}

// Filter returns the configured identity/generated key sets, falling back
// to the defaults for any list left empty.
func Filter(cfg config.Config) resource.Filter {
	filter := resource.DefaultFilter()
	if len(cfg.Filter.IdentityKeys) > 0 {
		filter.IdentityKeys = append([]string(nil), cfg.Filter.IdentityKeys...)
	}
	if len(cfg.Filter.GeneratedKeys) > 0 {
		filter.GeneratedKeys = append([]string(nil), cfg.Filter.GeneratedKeys...)
	}
	return filter
}

func describeValidation(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		messages = append(messages, fmt.Sprintf("%s failed %q", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return errors.New(strings.Join(messages, "; "))
}

func countSet(values ...bool) int {
	count := 0
	for _, value := range values {
		if value {
			count++
		}
	}
	return count
}
