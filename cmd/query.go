package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/spf13/cobra"
)

func newQueryCmd(app *app) *cobra.Command {
	flags := &descriptorFlags{}
	var op string

	cmd := &cobra.Command{
		Use:   "query [resource-type]",
		Short: "Print the request a descriptor builds, without sending it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, variant, err := flags.descriptor(args)
			if err != nil {
				return err
			}

			operation, err := parseOperation(op)
			if err != nil {
				return err
			}

			req, err := domain.Build(operation, desc, variant)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", req.Method, req.URL)
			return err
		},
	}
	flags.bind(cmd, domain.OperationFetch)
	cmd.Flags().StringVar(&op, "op", string(domain.OperationFetch), "Operation: fetch, create, replace, update, delete or upsert")
	cmd.Flags().StringVar(&flags.action, "action", "", "Upsert action")

	return cmd
}

func parseOperation(raw string) (domain.Operation, error) {
	op := domain.Operation(strings.ToLower(strings.TrimSpace(raw)))
	for _, verb := range resourceVerbs {
		if verb.op == op {
			return op, nil
		}
	}
	return "", fmt.Errorf("unsupported operation %q", raw)
}

func newTagsCmd(app *app) *cobra.Command {
	var verb string

	cmd := &cobra.Command{
		Use:   "tags <resource-type|path>",
		Short: "Show the cache tags a request provides or invalidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])

			var tags []string
			if strings.Contains(strings.Trim(target, "/"), "/") {
				tags = app.tagRules.TagsForPath(target, verb)
			} else {
				tags = app.tagRules.TagsFor(target, verb)
			}

			if len(tags) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no tags for %s %s\n", strings.ToUpper(verb), target)
				return err
			}
			for _, tag := range tags {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), tag); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&verb, "verb", http.MethodGet, "HTTP verb the tags are resolved for")

	return cmd
}
