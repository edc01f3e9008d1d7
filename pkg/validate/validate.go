// Package validate holds the shape checks applied before any id- or email-bearing request leaves the client.
package validate

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEntityID reports whether s is a trimmed 24-character hexadecimal object id.
func IsValidEntityID(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return false
	}
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// IsValidEmail reports whether s has a local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared struct validator with the `entityid` and `basicemail` tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("entityid", func(fl validator.FieldLevel) bool {
			return IsValidEntityID(fl.Field().String())
		})
		_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
		instance = v
	})
	return instance
}
