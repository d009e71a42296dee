//go:build windows

package input

import "errors"

func readSecurePassword(string) (string, error) {
	return "", errors.New("stdin is not a terminal")
}
