package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// requiredChannelFields lists the config keys each channel type needs.
var requiredChannelFields = map[ChannelType][]string{
	ChannelEmail:   {"to"},
	ChannelSlack:   {"webhook_url"},
	ChannelWebhook: {"url"},
	ChannelSMS:     {"phone_number"},
	ChannelTeams:   {"webhook_url"},
	ChannelDiscord: {"webhook_url"},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateThreshold checks a threshold definition.
func ValidateThreshold(t AlertThreshold) error {
	if err := validateStruct(t); err != nil {
		return fmt.Errorf("threshold %q: %w", t.ID, err)
	}
	return nil
}

// ValidateChannel checks a notification channel definition, including the
// transport-specific config keys.
func ValidateChannel(c NotificationChannel) error {
	if err := validateStruct(c); err != nil {
		return fmt.Errorf("channel %q: %w", c.ID, err)
	}
	var missing []string
	for _, key := range requiredChannelFields[c.Type] {
		if s, _ := c.Config[key].(string); s == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("channel %q: %w: missing config %s", c.ID, ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

func validateStruct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, msgForTag(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func msgForTag(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
