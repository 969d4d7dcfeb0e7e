package providers

import (
	"errors"

	"github.com/gookit/validate"

	"labdash/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return errors.New(v.Errors.One())
	}
	if cv.conf.Hub.Enabled && cv.conf.Hub.URL == "" {
		return errors.New("hub.url is required when the hub is enabled")
	}
	if cv.conf.Backend.Token == "" && (cv.conf.Backend.Username == "" || cv.conf.Backend.Password == "") {
		return errors.New("backend auth: set backend.token or backend.username and backend.password")
	}
	return nil
}
