package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a chat as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.find(cmd, args[0])
			if err != nil {
				return err
			}
			snap, err := a.store.GetSnapshot(cmd.Context(), item.ID)
			if err != nil {
				return err
			}
			doc := struct {
				Chat     any `json:"chat"`
				Snapshot any `json:"snapshot,omitempty"`
			}{Chat: item}
			if snap != nil {
				doc.Snapshot = snap
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "yaml", "yml":
				return writeYAML(cmd.OutOrStdout(), doc)
			default:
				return fmt.Errorf("unknown format %q (json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// writeYAML goes through the JSON encoding so field names and key order
// match the API, then resets the flow styles the JSON input implies.
func writeYAML(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return err
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	enc.SetIndent(2)
	return enc.Encode(&node)
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
