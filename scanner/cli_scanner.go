// Copyright (C) 2025 Tim Bastin, l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package scanner

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/pkg/errors"
)

const defaultScanTimeout = 5 * time.Minute

// CLIScanner shells out to an external vulnerability scanner binary and
// parses its JSON output. The subprocess is killed after the timeout, a
// hung scanner must not block ingestion forever.
type CLIScanner struct {
	binary  string
	args    []string
	timeout time.Duration
}

func NewCLIScanner(binary string, args ...string) *CLIScanner {
	return &CLIScanner{
		binary:  binary,
		args:    args,
		timeout: defaultScanTimeout,
	}
}

func (s *CLIScanner) Scan(ctx context.Context, target string) ([]dtos.ScanFinding, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append(append([]string{}, s.args...), target)
	cmd := exec.CommandContext(ctx, s.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	begin := time.Now()
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, errors.Errorf("scanner %s timed out after %s", s.binary, s.timeout)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "scanner %s failed: %s", s.binary, stderr.String())
	}
	slog.Debug("scanner finished", "binary", s.binary, "target", target, "duration", time.Since(begin))

	findings, err := normalize.DecodeScanResult(&stdout)
	if err != nil {
		return nil, err
	}
	return findings, nil
}
