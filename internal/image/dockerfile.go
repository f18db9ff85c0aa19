package image

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Dockerfile renders the spec as a build recipe. The output is
// deterministic: same spec in, same bytes out, so the build context
// digest only changes when the spec does.
func (s Spec) Dockerfile() string {
	var b strings.Builder

	fmt.Fprintf(&b, "FROM %s\n", s.BaseImage)

	for _, k := range sortedKeys(s.Labels) {
		fmt.Fprintf(&b, "LABEL %s=%q\n", k, s.Labels[k])
	}

	if len(s.Packages) > 0 {
		fmt.Fprintf(&b, "RUN pip install --no-cache-dir %s\n", strings.Join(s.Packages, " "))
	}

	for _, a := range s.Artifacts {
		fmt.Fprintf(&b, "COPY %s %s\n", a.Source, a.Dest)
	}

	if s.WorkDir != "" {
		fmt.Fprintf(&b, "WORKDIR %s\n", s.WorkDir)
	}

	if len(s.Command) > 0 {
		b.WriteString("CMD ")
		b.Write(execForm(s.Command))
		b.WriteByte('\n')
	}

	return b.String()
}

// execForm marshals argv as a JSON array so the command runs without a
// shell wrapper and signals reach the interpreter directly.
func execForm(argv []string) []byte {
	data, err := json.Marshal(argv)
	if err != nil {
		// []string cannot fail to marshal
		panic(err)
	}
	return data
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
