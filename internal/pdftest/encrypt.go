package pdftest

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Encrypt returns data encrypted with AES-128 and the given user password
func Encrypt(data []byte, userPW string) ([]byte, error) {
	// no configuration directory for test runs
	model.ConfigPath = "disable"

	conf := model.NewAESConfiguration(userPW, "owner-"+userPW, 128)
	var out bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
