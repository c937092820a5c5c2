package main

import (
	"os"
	"strings"

	"storymap/internal/cli"
)

func isSessionFile(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".jsonl") && len(s) > len(".jsonl")
}

func rewriteSessionArgs(argv []string) []string {
	// Convenience: `storymap session.jsonl` works like `storymap replay session.jsonl`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (`storymap --records map.json s.jsonl`), so find the
	// first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--records": true,
		"--config":  true,
		"--format":  true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Cobra stops looking for subcommands at "--", so replay goes in front of it.
			if i+1 < len(argv) && isSessionFile(argv[i+1]) {
				out := make([]string, 0, len(argv)+1)
				out = append(out, argv[:i]...)
				out = append(out, "replay")
				out = append(out, argv[i:]...)
				return out
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		if isSessionFile(a) {
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i]...)
			out = append(out, "replay")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteSessionArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
