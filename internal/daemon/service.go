package daemon

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ServiceSpec describes what a service manager needs to keep the daemon
// running: the executable, its arguments, the working directory, and
// where stdout/stderr should land. Actually installing the service is
// the CLI's (or the operator's) concern; the core only reports the
// shape.
type ServiceSpec struct {
	Label      string
	ExecPath   string
	Args       []string
	WorkingDir string
	StdoutPath string
	StderrPath string
}

// Service returns the ServiceSpec for a daemon rooted at home.
func Service(home string) ServiceSpec {
	exe, err := os.Executable()
	if err != nil {
		exe = "orchestra"
	}
	return ServiceSpec{
		Label:      "orchestra-daemon",
		ExecPath:   exe,
		Args:       []string{"daemon", "start", "--home", home},
		WorkingDir: home,
		StdoutPath: filepath.Join(home, "logs", "daemon.log"),
		StderrPath: filepath.Join(home, "logs", "daemon-err.log"),
	}
}

// TailLogs returns the last n lines of the daemon's main log file:
// logs/daemon.log when a service manager captures the daemon's stdout
// there, else the newest dated daemon category log. A daemon that
// never started has nothing to tail, so an empty slice is not an
// error.
func TailLogs(home string, n int) ([]string, error) {
	path := filepath.Join(home, "logs", "daemon.log")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		matches, _ := filepath.Glob(filepath.Join(home, "logs", "*_daemon.log"))
		if len(matches) == 0 {
			return nil, nil
		}
		sort.Strings(matches)
		path = matches[len(matches)-1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
