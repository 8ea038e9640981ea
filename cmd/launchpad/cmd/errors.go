package cmd

import "fmt"

func errInvalidAddress(s string) error {
	return fmt.Errorf("invalid address %q", s)
}
