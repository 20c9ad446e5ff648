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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/l3montree-dev/vulntrack/dtos"
	"github.com/l3montree-dev/vulntrack/monitoring"
	"github.com/l3montree-dev/vulntrack/shared"
	"github.com/package-url/packageurl-go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var nvdBaseURL = url.URL{
	Scheme: "https",
	Host:   "services.nvd.nist.gov",
	Path:   "/rest/json/cves/2.0",
}

const nvdMaxRetries = 3

type NVDService struct {
	httpClient *http.Client
	baseURL    url.URL
	// the public nvd api allows roughly 5 requests per 30 seconds
	limiter *rate.Limiter
}

func NewNVDService() NVDService {
	return NVDService{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 3, // only allow 3 concurrent connections to the same host
			},
		},
		baseURL: nvdBaseURL,
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 1),
	}
}

var _ shared.VulnDatabaseClient = &NVDService{}

func (nvdService NVDService) Search(ctx context.Context, purl packageurl.PackageURL) ([]dtos.VulnerabilityRaw, error) {
	u := nvdService.baseURL
	q := u.Query()
	q.Add("keywordSearch", purl.Name)
	u.RawQuery = q.Encode()

	resp, err := nvdService.fetchJSONFromNVD(ctx, u, 1)
	if err != nil {
		monitoring.FeedRequestsAmount.WithLabelValues("nvd", "error").Inc()
		return nil, err
	}
	monitoring.FeedRequestsAmount.WithLabelValues("nvd", "success").Inc()

	raws := make([]dtos.VulnerabilityRaw, 0, len(resp.Vulnerabilities))
	for _, vulnerability := range resp.Vulnerabilities {
		raws = append(raws, fromNVDCVE(vulnerability.Cve))
	}
	return raws, nil
}

// this method will retry 3 times before returning an error
func (nvdService NVDService) fetchJSONFromNVD(ctx context.Context, u url.URL, currentTry int) (nistResponse, error) {
	if err := nvdService.limiter.Wait(ctx); err != nil {
		return nistResponse{}, errors.Wrap(err, "rate limiter interrupted before fetching from NVD")
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nistResponse{}, errors.Wrap(err, "could not create request before fetching from NVD")
	}

	res, err := nvdService.httpClient.Do(req)
	if err != nil {
		if currentTry < nvdMaxRetries {
			slog.Error("could not fetch from NVD", "try", currentTry, "err", err)
			return nvdService.fetchJSONFromNVD(ctx, u, currentTry+1)
		}
		return nistResponse{}, errors.Wrap(err, "could not fetch from NVD")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if currentTry < nvdMaxRetries {
			slog.Error("could not fetch from NVD", "try", currentTry, "statusCode", res.StatusCode)
			return nvdService.fetchJSONFromNVD(ctx, u, currentTry+1)
		}
		return nistResponse{}, fmt.Errorf("could not fetch from NVD. Status code: %d", res.StatusCode)
	}

	var resp nistResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nistResponse{}, errors.Wrap(err, "could not decode response from NVD")
	}
	return resp, nil
}

func fromNVDCVE(cve nistCVE) dtos.VulnerabilityRaw {
	raw := dtos.VulnerabilityRaw{
		CVEID:  cve.ID,
		Source: "nvd",
	}

	for _, description := range cve.Descriptions {
		if description.Lang == "en" {
			raw.Description = description.Value
			break
		}
	}

	if published, err := time.Parse(nvdTimeLayout, cve.Published); err == nil {
		raw.PublishedDate = &published
	}
	if modified, err := time.Parse(nvdTimeLayout, cve.LastModified); err == nil {
		raw.LastModifiedDate = &modified
	}

	// prefer the v3.1 metric, fall back to v3.0 and v2
	metrics := cve.Metrics.CvssMetricV31
	if len(metrics) == 0 {
		metrics = cve.Metrics.CvssMetricV30
	}
	if len(metrics) == 0 {
		metrics = cve.Metrics.CvssMetricV2
	}
	if len(metrics) > 0 {
		raw.CVSSScore = metrics[0].CvssData.BaseScore
		raw.CVSSVector = metrics[0].CvssData.VectorString
		raw.Severity = metrics[0].CvssData.BaseSeverity
	}

	if len(cve.Weaknesses) > 0 && len(cve.Weaknesses[0].Description) > 0 {
		raw.CWE = cve.Weaknesses[0].Description[0].Value
	}
	return raw
}
