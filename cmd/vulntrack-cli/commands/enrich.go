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
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewEnrichCommand() *cobra.Command {
	enrichCmd := cobra.Command{
		Use:   "enrich",
		Short: "Enrich stored components with external vulnerability data",
	}

	enrichCmd.AddCommand(newEnrichSBOMCommand())
	enrichCmd.AddCommand(newEnrichAllCommand())
	return &enrichCmd
}

func newEnrichSBOMCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sbom <sbom-id>",
		Short: "Enrich all components of one sbom",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sbomID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			// inline synchronizer - the call blocks until the job is done
			jobID := a.enrichmentService.ScheduleSBOMEnrichment(sbomID)
			job, ok := a.enrichmentService.JobStatus(jobID)
			if !ok {
				return fmt.Errorf("job %s vanished from the status store", jobID)
			}
			slog.Info("enrichment finished", "jobID", jobID, "state", job.State, "components", job.TotalComponents)
			return nil
		},
	}
}

func newEnrichAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Enrich every known sbom",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			sboms, err := a.sbomRepository.All()
			if err != nil {
				return err
			}
			for _, sbom := range sboms {
				jobID := a.enrichmentService.ScheduleSBOMEnrichment(sbom.ID)
				job, _ := a.enrichmentService.JobStatus(jobID)
				slog.Info("enrichment finished", "sbomID", sbom.ID, "state", job.State, "components", job.TotalComponents)
			}
			return nil
		},
	}
}
