package command

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

const (
	testSerial = "IMEI123456789"
	testSecret = "hunter2"
	testID     = "991462421015"
	testUser   = "+33600000001"
)

// testEnv is an isolated CLI configuration and daemon state directory.
type testEnv struct {
	dir        string
	cliConfig  string
	config     string
	stateFile  string
	journalDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		cliConfig:  filepath.Join(dir, "cli.yaml"),
		config:     filepath.Join(dir, "tracklink.yaml"),
		stateFile:  filepath.Join(dir, "config.json"),
		journalDir: filepath.Join(dir, "journal"),
	}

	daemon := "device:\n" +
		"  user_number: \"" + testUser + "\"\n" +
		"  call_number: \"+33600000003\"\n" +
		"  state_file: " + env.stateFile + "\n" +
		"storage:\n" +
		"  journal_dir: " + env.journalDir + "\n"
	writeTestFile(t, env.config, daemon)
	return env
}

// run runs the CLI with stdin and returns what it wrote to stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{"tracklink-cli", "--cli-config", e.cliConfig}, args...)
	err := app.Run(argv)
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	if err != nil {
		t.Fatalf("%v: error = %v\noutput:\n%s", args, err, out)
	}
	return out
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}
