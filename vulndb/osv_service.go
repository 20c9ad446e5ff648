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

package vulndb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/monitoring"
	"github.com/l3montree-dev/vulntrack/risk"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/package-url/packageurl-go"
	"github.com/pkg/errors"
)

const osvBaseURL = "https://api.osv.dev/v1"
const osvMaxRetries = 3

type OSVService struct {
	httpClient *http.Client
	baseURL    string
	// sleep between rate limited retries, injectable for tests
	retryDelay time.Duration
}

func NewOSVService() OSVService {
	return OSVService{
		httpClient: &http.Client{},
		baseURL:    osvBaseURL,
		retryDelay: 6 * time.Second,
	}
}

var _ shared.VulnDatabaseClient = &OSVService{}

type osvQuery struct {
	Package osvPackage `json:"package"`
}

type osvPackage struct {
	Purl string `json:"purl"`
}

type osvQueryResponse struct {
	Vulns []osvVulnerability `json:"vulns"`
}

type osvVulnerability struct {
	ID        string     `json:"id"`
	Aliases   []string   `json:"aliases"`
	Summary   string     `json:"summary"`
	Details   string     `json:"details"`
	Modified  *time.Time `json:"modified"`
	Published *time.Time `json:"published"`
	Severity  []struct {
		Type  string `json:"type"`
		Score string `json:"score"`
	} `json:"severity"`
	DatabaseSpecific struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
}

func (osvService OSVService) Search(ctx context.Context, purl packageurl.PackageURL) ([]dtos.VulnerabilityRaw, error) {
	resp, err := osvService.query(ctx, purl, 1)
	if err != nil {
		monitoring.FeedRequestsAmount.WithLabelValues("osv", "error").Inc()
		return nil, err
	}
	monitoring.FeedRequestsAmount.WithLabelValues("osv", "success").Inc()

	raws := make([]dtos.VulnerabilityRaw, 0, len(resp.Vulns))
	for _, vuln := range resp.Vulns {
		raws = append(raws, fromOSVVulnerability(vuln))
	}
	return raws, nil
}

// query retries rate limited requests up to 3 times before giving up.
func (osvService OSVService) query(ctx context.Context, purl packageurl.PackageURL, currentTry int) (osvQueryResponse, error) {
	body, err := json.Marshal(osvQuery{Package: osvPackage{Purl: purl.ToString()}})
	if err != nil {
		return osvQueryResponse{}, errors.Wrap(err, "could not marshal osv query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, osvService.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return osvQueryResponse{}, errors.Wrap(err, "could not create request before fetching from OSV")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := osvService.httpClient.Do(req)
	if err != nil {
		return osvQueryResponse{}, errors.Wrap(err, "could not fetch from OSV")
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		if currentTry > osvMaxRetries {
			return osvQueryResponse{}, fmt.Errorf("osv keeps rate limiting after %d tries", currentTry)
		}
		slog.Warn("osv rate limited the request, retrying", "try", currentTry, "delay", osvService.retryDelay)
		select {
		case <-ctx.Done():
			return osvQueryResponse{}, ctx.Err()
		case <-time.After(osvService.retryDelay):
		}
		return osvService.query(ctx, purl, currentTry+1)
	}
	if res.StatusCode != http.StatusOK {
		return osvQueryResponse{}, fmt.Errorf("could not fetch from OSV. Status code: %d", res.StatusCode)
	}

	var resp osvQueryResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return osvQueryResponse{}, errors.Wrap(err, "could not decode response from OSV")
	}
	return resp, nil
}

func fromOSVVulnerability(vuln osvVulnerability) dtos.VulnerabilityRaw {
	cveID := vuln.ID
	for _, alias := range vuln.Aliases {
		if strings.HasPrefix(alias, "CVE-") {
			cveID = alias
			break
		}
	}

	var vector string
	for _, severity := range vuln.Severity {
		if strings.HasPrefix(severity.Type, "CVSS") {
			vector = severity.Score
			break
		}
	}

	var score float64
	if vector != "" {
		score = risk.ScoreFromVector(vector)
	}

	return dtos.VulnerabilityRaw{
		CVEID:            cveID,
		Title:            vuln.Summary,
		Description:      vuln.Details,
		Severity:         vuln.DatabaseSpecific.Severity,
		CVSSScore:        score,
		CVSSVector:       vector,
		PublishedDate:    vuln.Published,
		LastModifiedDate: vuln.Modified,
		Source:           "osv",
	}
}
