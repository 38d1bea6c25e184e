package dev

import (
	"github.com/nu7hatch/gouuid"
	"time"
)

type Error struct {
	Reference string                 `json:"reference"`
	Time      time.Time              `json:"time"`
	Component string                 `json:"component"`
	Name      string                 `json:"name"`
	Error     string                 `json:"error"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

func (e Error) Slug() string {
	return e.Reference
}

func NewError(component, name string, err error, extra map[string]interface{}) Error {
	reference := ""
	if u, uerr := uuid.NewV4(); uerr == nil {
		reference = u.String()
	}

	return Error{
		Reference: reference,
		Time:      time.Now(),
		Component: component,
		Name:      name,
		Error:     err.Error(),
		Extra:     extra,
	}
}
