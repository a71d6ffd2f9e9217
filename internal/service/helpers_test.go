package service

import (
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrString(v string) *string {
	return &v
}

func ptrInt(v int) *int {
	return &v
}
