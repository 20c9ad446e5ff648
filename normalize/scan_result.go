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

package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/pkg/errors"
)

var validate = validator.New()

type scanResultEnvelope struct {
	Findings []dtos.ScanFinding `json:"findings"`
}

// DecodeScanResult decodes and validates a scanner result payload. Every
// finding is checked - the whole unit fails with an exhaustive error report
// if any required field is missing or malformed.
func DecodeScanResult(r io.Reader) ([]dtos.ScanFinding, error) {
	var envelope scanResultEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, errors.Wrap(err, "could not decode scan result payload")
	}

	var validationErrors []string
	for i, finding := range envelope.Findings {
		if err := validate.Struct(finding); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("findings[%d]: %s", i, err))
		}
	}
	if len(validationErrors) > 0 {
		return nil, fmt.Errorf("invalid scan result: %s", strings.Join(validationErrors, "; "))
	}

	return envelope.Findings, nil
}
