package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"gts-generator/internal/gtsid"
)

// segmentJSON is the wire form of one identifier segment.
type segmentJSON struct {
	Vendor    string `json:"vendor"`
	Package   string `json:"package"`
	Namespace string `json:"namespace"`
	Type      string `json:"type"`
	Major     uint   `json:"version_major"`
	Minor     *uint  `json:"version_minor,omitempty"`
}

type idJSON struct {
	ID       string        `json:"id"`
	Root     bool          `json:"root"`
	UUID     string        `json:"uuid"`
	Segments []segmentJSON `json:"segments"`
}

func validateIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-id <id>...",
		Short: "Check that identifiers parse as GTS schema ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int

			for _, arg := range args {
				if _, err := gtsid.Parse(arg); err != nil {
					cmd.Printf("invalid  %s: %v\n", arg, err)
					failed++

					continue
				}

				cmd.Printf("valid    %s\n", arg)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d identifiers invalid", failed, len(args))
			}

			return nil
		},
	}
}

func parseIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-id <id>",
		Short: "Parse an identifier and print its segments as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gtsid.Parse(args[0])
			if err != nil {
				return err
			}

			out := idJSON{
				ID:   id.String(),
				Root: id.IsRoot(),
				UUID: id.UUID().String(),
			}

			for _, seg := range id.Segments {
				out.Segments = append(out.Segments, segmentJSON{
					Vendor:    seg.Vendor,
					Package:   seg.Package,
					Namespace: seg.Namespace,
					Type:      seg.TypeName,
					Major:     seg.VerMajor,
					Minor:     seg.VerMinor,
				})
			}

			return printJSON(cmd, out)
		},
	}
}

func matchIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match-id <pattern> <id>...",
		Short: "Match identifiers against a wildcard pattern",
		Long: `match-id checks identifiers against a pattern like

    gts.vendor.package.*

A trailing '*' matches any remaining components; a pattern segment
without a minor version matches any minor version.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := gtsid.ParseWildcard(args[0])
			if err != nil {
				return err
			}

			for _, arg := range args[1:] {
				id, err := gtsid.Parse(arg)
				if err != nil {
					return err
				}

				if w.Match(id) {
					cmd.Printf("match    %s\n", id)
				} else {
					cmd.Printf("no match %s\n", id)
				}
			}

			return nil
		},
	}
}

func uuidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uuid <id>",
		Short: "Derive the deterministic UUID of an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gtsid.Parse(args[0])
			if err != nil {
				return err
			}

			cmd.Println(id.UUID())

			return nil
		},
	}
}

func composeInstanceIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compose-instance-id <schema-id> <segment>",
		Short: "Append an instance segment to a schema identifier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := gtsid.Parse(args[0])
			if err != nil {
				return err
			}

			iid, err := gtsid.ComposeInstanceID(id, args[1])
			if err != nil {
				return err
			}

			cmd.Println(iid)

			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	cmd.Println(string(data))

	return nil
}
