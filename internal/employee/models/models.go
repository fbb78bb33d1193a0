package models

import (
	"strings"

	"gatepass/pkg/platform/validation"
)

// RegisterCommand carries a new employee record.
type RegisterCommand struct {
	Name   string
	Unit   string
	IneURL string
}

func (c *RegisterCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Unit = strings.TrimSpace(c.Unit)
	c.IneURL = strings.TrimSpace(c.IneURL)
}

// Validate requires every field.
func (c *RegisterCommand) Validate() error {
	if err := validation.CheckField("name", c.Name, validation.MaxFieldLength); err != nil {
		return err
	}
	if err := validation.CheckField("unit", c.Unit, validation.MaxFieldLength); err != nil {
		return err
	}
	return validation.CheckField("ineUrl", c.IneURL, validation.MaxURLLength)
}
