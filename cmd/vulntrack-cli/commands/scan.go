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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package commands

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/l3montree-dev/vulntrack/scanner"
	"github.com/spf13/cobra"
)

func NewScanCommand() *cobra.Command {
	scanCmd := cobra.Command{
		Use:   "scan",
		Short: "Run an external scanner or merge an existing scan result",
	}

	scanCmd.AddCommand(newScanRunCommand())
	scanCmd.AddCommand(newScanMergeCommand())
	return &scanCmd
}

func newScanRunCommand() *cobra.Command {
	runCmd := cobra.Command{
		Use:   "run <target>",
		Short: "Run the configured scanner binary against a target and merge its findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sbomID, err := sbomIDFlag(cmd)
			if err != nil {
				return err
			}
			binary, err := cmd.Flags().GetString("scanner")
			if err != nil {
				return err
			}

			findings, err := scanner.NewCLIScanner(binary).Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return mergeFindings(sbomID, findings)
		},
	}

	runCmd.Flags().String("sbom-id", "", "id of the sbom the findings belong to")
	runCmd.Flags().String("scanner", "trivy", "scanner binary to execute")
	if err := runCmd.MarkFlagRequired("sbom-id"); err != nil {
		panic(err)
	}
	return &runCmd
}

func newScanMergeCommand() *cobra.Command {
	mergeCmd := cobra.Command{
		Use:   "merge <file>",
		Short: "Merge a scan result file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sbomID, err := sbomIDFlag(cmd)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			findings, err := normalize.DecodeScanResult(file)
			if err != nil {
				return err
			}
			return mergeFindings(sbomID, findings)
		},
	}

	mergeCmd.Flags().String("sbom-id", "", "id of the sbom the findings belong to")
	if err := mergeCmd.MarkFlagRequired("sbom-id"); err != nil {
		panic(err)
	}
	return &mergeCmd
}

func sbomIDFlag(cmd *cobra.Command) (uuid.UUID, error) {
	sbomIDStr, err := cmd.Flags().GetString("sbom-id")
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sbomIDStr)
}

func mergeFindings(sbomID uuid.UUID, findings []dtos.ScanFinding) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	report, err := a.vulnerabilityMerger.ProcessScanResult(sbomID, findings)
	if err != nil {
		return err
	}
	slog.Info("scan result merged", "processed", report.Processed, "skipped", report.Skipped, "failed", report.Failed)
	return nil
}
