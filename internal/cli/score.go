// internal/cli/score.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lovefi-matcher/internal/common/errors"
	httpclient "lovefi-matcher/internal/common/http"
	"lovefi-matcher/internal/common/metrics"
	"lovefi-matcher/internal/common/validation"
	"lovefi-matcher/internal/compatibility"
	"lovefi-matcher/internal/models"
	"lovefi-matcher/internal/output"
)

type scoreOptions struct {
	*rootOptions
	profileA string
	profileB string
	pair     string
	mode     string
	server   string
	timeout  time.Duration
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score two profiles",
		Long: `Score two profiles read from JSON files.

Examples:
  matchctl score --a alice.json --b bob.json
  matchctl score --a alice.json --b bob.json --mode rest -o json
  matchctl score --pair request.json   # flat name1/age1/... body
  matchctl score --pair request.json --server http://localhost:8080

With --server the pair is scored by a running matcher, which always uses
its REST configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.profileA, "a", "", "first profile JSON file")
	cmd.Flags().StringVar(&opts.profileB, "b", "", "second profile JSON file")
	cmd.Flags().StringVar(&opts.pair, "pair", "", "flat match request JSON file")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(compatibility.ModeMessage), "scoring mode (message, rest)")
	cmd.Flags().StringVar(&opts.server, "server", "", "score on a running matcher at this base URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout for --server")
	cmd.MarkFlagsRequiredTogether("a", "b")
	cmd.MarkFlagsMutuallyExclusive("a", "pair")
	cmd.MarkFlagsMutuallyExclusive("b", "pair")

	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	mode, err := compatibility.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	var a, b models.ProfilePayload
	switch {
	case opts.pair != "":
		a, b, err = readPair(opts.pair)
	case opts.profileA != "":
		a, err = readProfile(opts.profileA)
		if err == nil {
			b, err = readProfile(opts.profileB)
		}
	default:
		return fmt.Errorf("either --a and --b or --pair is required")
	}
	if err != nil {
		metrics.RecordScoreError(metrics.TransportCLI, string(errors.Normalize(err).Code))
		return err
	}

	if opts.server != "" {
		if cmd.Flags().Changed("mode") && mode != compatibility.ModeREST {
			return fmt.Errorf("--server scores in rest mode; --mode %s is not available remotely", mode)
		}
		return scoreRemote(cmd, opts, a, b)
	}

	opts.log.Debug("scoring profiles", map[string]interface{}{
		"mode":     string(mode),
		"profileA": a.Name,
		"profileB": b.Name,
	})

	result, err := compatibility.Score(a.ToProfile(), b.ToProfile(), mode)
	if err != nil {
		metrics.RecordScoreError(metrics.TransportCLI, string(errors.ErrCodeScoringConfigurationInvalid))
		return err
	}
	metrics.RecordScore(string(mode), metrics.TransportCLI, result.OverallScore)

	return output.Write(cmd.OutOrStdout(), opts.outputFmt, result)
}

func readProfile(path string) (models.ProfilePayload, error) {
	var p models.ProfilePayload
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if res := validation.ValidateProfile(data); !res.Valid {
		return p, errors.NewProfileValidationError(fmt.Sprintf("%s: %s", path, res.Error()))
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, errors.NewParseError(err)
	}
	return p, nil
}

func readPair(path string) (models.ProfilePayload, models.ProfilePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ProfilePayload{}, models.ProfilePayload{}, fmt.Errorf("read match request: %w", err)
	}
	if res := validation.ValidateMatchRequest(data); !res.Valid {
		return models.ProfilePayload{}, models.ProfilePayload{},
			errors.NewProfileValidationError(fmt.Sprintf("%s: %s", path, res.Error()))
	}
	var req models.MatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return models.ProfilePayload{}, models.ProfilePayload{}, errors.NewParseError(err)
	}
	a, b := req.Profiles()
	return a, b, nil
}

func scoreRemote(cmd *cobra.Command, opts *scoreOptions, a, b models.ProfilePayload) error {
	opts.log.Debug("scoring profiles remotely", map[string]interface{}{
		"server":   opts.server,
		"profileA": a.Name,
		"profileB": b.Name,
	})

	req := models.MatchRequest{
		Name1: a.Name, Age1: a.Age, Interests1: a.Interests, Location1: a.Location, Preferences1: a.Preferences,
		Name2: b.Name, Age2: b.Age, Interests2: b.Interests, Location2: b.Location, Preferences2: b.Preferences,
	}
	resp, err := httpclient.NewClient(opts.server, opts.timeout).Calculate(cmd.Context(), req)
	if err != nil {
		metrics.RecordScoreError(metrics.TransportCLI, string(errors.Normalize(err).Code))
		return err
	}
	if resp.Result == nil {
		return fmt.Errorf("matcher response carried no result")
	}
	return output.Write(cmd.OutOrStdout(), opts.outputFmt, resp.Result)
}
