package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	sessionrender "github.com/bnema/adminkit/internal/adapters/render/session"
	"github.com/bnema/adminkit/internal/domain"
	"github.com/spf13/cobra"
)

type descriptorFlags struct {
	url       string
	id        string
	idField   string
	offset    int
	limit     int
	search    string
	sort      string
	order     string
	filters   []string
	rawQuery  string
	action    string
	body      string
	upload    bool
	variant   string
	retries   int
	showStats bool
}

func (f *descriptorFlags) bind(cmd *cobra.Command, op domain.Operation) {
	flags := cmd.Flags()
	flags.StringVar(&f.url, "url", "", "Override path used instead of the resource type")
	flags.StringVar(&f.id, "id", "", "Resource id")
	flags.StringVar(&f.idField, "id-field", "", "Query key the id is sent under")
	flags.StringVar(&f.variant, "variant", domain.StandardVariant.Name, "Query builder variant: standard, by-action or path-segment")
	flags.StringVar(&f.rawQuery, "query", "", "Raw query string appended to the url")

	if op == domain.OperationFetch {
		flags.IntVar(&f.offset, "offset", -1, "Pagination offset")
		flags.IntVar(&f.limit, "limit", -1, "Pagination limit")
		flags.StringVar(&f.search, "search", "", "Search term")
		flags.StringVar(&f.sort, "sort", "", "Sort field")
		flags.StringVar(&f.order, "order", "", "Sort direction: asc or desc")
		flags.StringArrayVar(&f.filters, "filter", nil, "Filter as key=value (repeatable, comma separates list values)")
		return
	}

	flags.StringVar(&f.body, "body", "", "JSON body, or @file to read it from a file")
	flags.BoolVar(&f.upload, "upload", false, "Send the body as a file upload")
	if op == domain.OperationUpsert {
		flags.StringVar(&f.action, "action", "", "Upsert action: edit sends PUT, anything else POST")
	}
}

func (f *descriptorFlags) descriptor(args []string) (domain.ResourceDescriptor, domain.BuilderVariant, error) {
	variant, err := domain.ParseBuilderVariant(f.variant)
	if err != nil {
		return domain.ResourceDescriptor{}, domain.BuilderVariant{}, err
	}

	direction, err := domain.ParseSortDirection(f.order)
	if err != nil {
		return domain.ResourceDescriptor{}, domain.BuilderVariant{}, err
	}

	desc := domain.ResourceDescriptor{
		URL:           f.url,
		ID:            f.id,
		IDFieldName:   f.idField,
		Search:        f.search,
		SortField:     f.sort,
		SortDirection: direction,
		RawQuery:      f.rawQuery,
		Action:        f.action,
		Upload:        f.upload,
	}
	if len(args) > 0 {
		desc.Type = args[0]
	}
	if f.offset >= 0 {
		offset := f.offset
		desc.Offset = &offset
	}
	if f.limit >= 0 {
		limit := f.limit
		desc.Limit = &limit
	}

	for _, raw := range f.filters {
		filter, err := parseFilter(raw)
		if err != nil {
			return domain.ResourceDescriptor{}, domain.BuilderVariant{}, err
		}
		desc.Filters = append(desc.Filters, filter)
	}

	body, err := readBody(f.body)
	if err != nil {
		return domain.ResourceDescriptor{}, domain.BuilderVariant{}, err
	}
	desc.Body = body

	if err := desc.Validate(); err != nil {
		return domain.ResourceDescriptor{}, domain.BuilderVariant{}, err
	}

	return desc, variant, nil
}

// parseFilter reads key=value. Comma-separated values become a list and
// the literal null drops the filter from the query.
func parseFilter(raw string) (domain.Filter, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return domain.Filter{}, fmt.Errorf("invalid filter %q: expected key=value", raw)
	}

	switch {
	case value == "null":
		return domain.Filter{Key: key, Value: nil}, nil
	case strings.Contains(value, ","):
		parts := strings.Split(value, ",")
		values := make([]any, 0, len(parts))
		for _, part := range parts {
			values = append(values, parseScalar(strings.TrimSpace(part)))
		}
		return domain.Filter{Key: key, Value: values}, nil
	default:
		return domain.Filter{Key: key, Value: parseScalar(value)}, nil
	}
}

func parseScalar(value string) any {
	if value == "true" || value == "false" {
		return value == "true"
	}
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
		return parsed
	}
	return value
}

func readBody(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		data = bytes.TrimSpace(fileData)
	}

	if !json.Valid(data) {
		return nil, errors.New("body is not valid JSON")
	}

	return json.RawMessage(data), nil
}

type resourceVerb struct {
	use   string
	short string
	op    domain.Operation
}

var resourceVerbs = []resourceVerb{
	{use: "get", short: "Fetch a resource or a page of resources", op: domain.OperationFetch},
	{use: "create", short: "Create a resource (POST)", op: domain.OperationCreate},
	{use: "replace", short: "Replace a resource (PUT)", op: domain.OperationReplace},
	{use: "update", short: "Partially update a resource (PATCH)", op: domain.OperationUpdate},
	{use: "delete", short: "Delete a resource (DELETE)", op: domain.OperationDelete},
	{use: "upsert", short: "Create or edit a resource depending on --action", op: domain.OperationUpsert},
}

func newResourceCmds(app *app) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(resourceVerbs))
	for _, verb := range resourceVerbs {
		cmds = append(cmds, newResourceCmd(app, verb))
	}
	return cmds
}

func newResourceCmd(app *app, verb resourceVerb) *cobra.Command {
	flags := &descriptorFlags{}

	cmd := &cobra.Command{
		Use:   verb.use + " [resource-type]",
		Short: verb.short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, variant, err := flags.descriptor(args)
			if err != nil {
				return err
			}
			if flags.showStats {
				defer func() { _ = writeMetrics(cmd.ErrOrStderr(), app.registry) }()
			}
			return runResource(cmd, app, verb.op, desc, variant, flags.retries)
		},
	}
	flags.bind(cmd, verb.op)
	cmd.Flags().IntVar(&flags.retries, "retry", 0, "Retry a failed request up to N times while the session allows it")
	cmd.Flags().BoolVar(&flags.showStats, "metrics", false, "Print request metrics to stderr")

	return cmd
}

func runResource(cmd *cobra.Command, app *app, op domain.Operation, desc domain.ResourceDescriptor, variant domain.BuilderVariant, retries int) error {
	ctx := cmd.Context()
	svc := app.resources(variant)

	req, err := domain.Build(op, desc, variant)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	progress := sessionrender.RequestProgress{Method: req.Method, URL: req.URL}

	result, err := sessionrender.RunRequest(ctx, cmd.ErrOrStderr(), progress, func(ctx context.Context) (domain.Result, error) {
		if op == domain.OperationFetch {
			return svc.Fetch(ctx, desc)
		}
		return svc.Mutate(ctx, op, desc)
	})
	if err != nil {
		return err
	}

	for attempt := 0; attempt < retries && shouldRetry(app, result); attempt++ {
		failed := *result.Error
		progress.Attempt = app.session.Session().RetryCount + 1
		result, err = sessionrender.RunRequest(ctx, cmd.ErrOrStderr(), progress, func(ctx context.Context) (domain.Result, error) {
			return svc.Retry(ctx, op, desc, failed)
		})
		if err != nil {
			return err
		}
		count := app.session.Session().RetryCount
		app.logger.Info().Int("attempt", attempt+1).Int("retry_count", count).Msg("resource.retried")
		if !result.OK() {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "retry %d/%d failed: %s\n", count, domain.MaxRetries, result.Error.Message)
		}
	}

	if app.session.State() == domain.SessionStateSessionExpiring {
		if err := awaitForcedLogout(cmd, app); err != nil {
			return err
		}
	}

	return writeResult(cmd, result)
}

func shouldRetry(app *app, result domain.Result) bool {
	if result.OK() || result.Error.Returnable || !result.Error.IsServerError() {
		return false
	}
	return app.session.State() == domain.SessionStateAuthenticated
}

// awaitForcedLogout hands the running countdown to the terminal view and
// waits until the session is logged out.
func awaitForcedLogout(cmd *cobra.Command, app *app) error {
	session := app.session.Session()
	app.session.Teardown()
	if app.session.State() != domain.SessionStateSessionExpiring {
		return fmt.Errorf("%w: logged out", domain.ErrNotAuthenticated)
	}

	reason, err := sessionrender.RunCountdown(cmd.Context(), cmd.ErrOrStderr(), app.bus, sessionrender.CountdownOptions{
		Start:     app.session.CountdownRemaining(),
		LastError: session.LastErrorSeen,
		OnSubscribed: func() {
			app.session.ResumeCountdown()
		},
	})
	if err != nil {
		app.session.Teardown()
		return fmt.Errorf("session countdown: %w", err)
	}

	return fmt.Errorf("%w: logged out (%s)", domain.ErrNotAuthenticated, reason)
}

func writeResult(cmd *cobra.Command, result domain.Result) error {
	if !result.OK() {
		if result.Error.Returnable {
			return fmt.Errorf("%w (go back and adjust the request)", *result.Error)
		}
		return *result.Error
	}

	if len(result.Data) == 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "OK (%d)\n", result.Status)
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result.Data, "", "  "); err != nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(result.Data))
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return err
}
