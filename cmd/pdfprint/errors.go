package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfprint-golang/pkg/validate"
)

type errorKindInfo struct {
	Code     validate.ErrorKind `json:"code"`
	Message  string             `json:"message"`
	OKForWeb bool               `json:"ok_for_web"`
}

func newErrorsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "errors",
		Short: "List every validation error code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var kinds []errorKindInfo
			for _, k := range validate.AllErrorKinds() {
				kinds = append(kinds, errorKindInfo{
					Code:     k,
					Message:  k.Format(validate.DefaultBleed),
					OKForWeb: k.OKForWeb(),
				})
			}

			w := cmd.OutOrStdout()
			if opts.json() {
				b, err := json.Marshal(kinds)
				if err != nil {
					return fmt.Errorf("marshal json: %w", err)
				}
				fmt.Fprintln(w, string(b))
				return nil
			}
			for _, k := range kinds {
				fmt.Fprintf(w, "%s (web: %s)\n  %s\n", k.Code, okString(k.OKForWeb), k.Message)
			}
			return nil
		},
	}
}

func okString(ok bool) string {
	if ok {
		return "ok"
	}
	return "fail"
}
