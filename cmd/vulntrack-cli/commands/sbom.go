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
	"github.com/l3montree-dev/vulntrack/normalize"
	"github.com/spf13/cobra"
)

func NewSBOMCommand() *cobra.Command {
	sbomCmd := cobra.Command{
		Use:   "sbom",
		Short: "Manage sboms",
	}

	sbomCmd.AddCommand(newIngestCommand())
	return &sbomCmd
}

func newIngestCommand() *cobra.Command {
	ingestCmd := cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a CycloneDX sbom file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectIDStr, err := cmd.Flags().GetString("project-id")
			if err != nil {
				return err
			}
			projectID, err := uuid.Parse(projectIDStr)
			if err != nil {
				return err
			}
			name, err := cmd.Flags().GetString("name")
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			bom, err := normalize.DecodeBOM(file)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			sbom, err := a.sbomService.IngestSBOM(projectID, name, bom)
			if err != nil {
				return err
			}
			slog.Info("sbom ingested", "sbomID", sbom.ID, "components", len(bom.Components))
			return nil
		},
	}

	ingestCmd.Flags().String("project-id", "", "id of the project the sbom belongs to")
	ingestCmd.Flags().String("name", "default", "name of the sbom inside the project")
	if err := ingestCmd.MarkFlagRequired("project-id"); err != nil {
		panic(err)
	}
	return &ingestCmd
}
