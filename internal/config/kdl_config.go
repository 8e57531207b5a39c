package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// mergeKDL parses duckindex.kdl and overlays any nodes it finds onto cfg.
// Unrecognized nodes are ignored rather than rejected, so a user's file
// can carry forward-looking settings this build doesn't know about yet.
func mergeKDL(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "workers":
			if v, ok := firstIntArg(n); ok {
				cfg.Workers = v
			}
		case "ocr_languages":
			if s, ok := firstStringArg(n); ok {
				cfg.OcrLanguages = s
			}
		case "busy_timeout_ms":
			if v, ok := firstIntArg(n); ok {
				cfg.BusyTimeoutMs = v
			}
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
