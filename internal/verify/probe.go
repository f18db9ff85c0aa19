package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/image"
)

// ProbeCommand builds the in-container command that loads the setup
// script and confirms the expected names land in its namespace. The
// interpreter exits non-zero naming any missing symbols.
func ProbeCommand(script string, symbols []string) []string {
	quoted := make([]string, len(symbols))
	for i, s := range symbols {
		quoted[i] = "'" + s + "'"
	}
	code := fmt.Sprintf(
		"import runpy, sys; ns = runpy.run_path('%s'); missing = [n for n in [%s] if n not in ns]; sys.exit('missing symbols: ' + ', '.join(missing) if missing else 0)",
		script, strings.Join(quoted, ", "))
	return []string{"python", "-c", code}
}

// probe runs the image once and checks the setup script leaves the
// expected symbols behind. Needs the beamline IOCs (or simulators) the
// script connects to, so it only runs on request.
func (v *Verifier) probe(ctx context.Context, report *Report, spec image.Spec, tag string) error {
	name := "tomoscan-verify-" + uuid.NewString()
	cfg := container.ContainerConfig{
		Image:   tag,
		Name:    name,
		Cmd:     ProbeCommand(spec.SetupScript(), spec.ProbeSymbols),
		WorkDir: spec.WorkDir,
		Remove:  true,
	}

	v.logger.Debug("probing session namespace", "image", spec.Name, "container", name)
	output, err := v.manager.Run(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		v.addCheck(report, "probe", false, lastLine(output, err))
		return nil
	}

	v.addCheck(report, "probe", true,
		fmt.Sprintf("%s defines %s", spec.SetupScript(), strings.Join(spec.ProbeSymbols, ", ")))
	return nil
}

// lastLine picks the most useful line of probe output for the check
// detail: the interpreter prints its exit message last.
func lastLine(output []byte, err error) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return err.Error()
}
