// sample implementation, do not build or test
//go:build ignore

package main

// Minimal agent: asks the server which packages apply to the installed
// version, reports the version after installing, and fetches its runtime
// configuration.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const licenseKeyHeader = "X-License-Key"

type Update struct {
	UpdateID         int64  `json:"UpdateId"`
	Version          string `json:"Version"`
	Mandatory        bool   `json:"Mandatory"`
	PackageType      int    `json:"PackageType"`
	FileName         string `json:"FileName"`
	FileHash         string `json:"FileHash"`
	APIFileName      string `json:"ApiFileName"`
	FrontendFileName string `json:"FrontendFileName"`
}

type CheckResult struct {
	Success         bool     `json:"Success"`
	Message         string   `json:"Message"`
	HasUpdate       bool     `json:"HasUpdate"`
	Latest          *Update  `json:"LatestUpdate"`
	RequiredUpdates []Update `json:"RequiredUpdates"`
	Mandatory       bool     `json:"Mandatory"`
}

// CheckForUpdate lists the active updates newer than installedVersion.
// clientID may be 0 when the agent does not know its client.
func CheckForUpdate(baseURL string, applicationID int64, installedVersion string, clientID int64) (*CheckResult, error) {
	q := url.Values{}
	q.Set("applicationId", strconv.FormatInt(applicationID, 10))
	q.Set("version", installedVersion)
	if clientID > 0 {
		q.Set("clientId", strconv.FormatInt(clientID, 10))
	}

	resp, err := http.Get(baseURL + "/api/v1/updates/check?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var result CheckResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("check failed: %s", result.Message)
	}
	return &result, nil
}

// ReportInstalledVersion records the version now running under the license.
func ReportInstalledVersion(baseURL, licenseKey string, licenseID int64, version string) error {
	body, err := json.Marshal(map[string]string{"version": version})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	target := baseURL + "/api/v1/licenses/" + strconv.FormatInt(licenseID, 10) + "/installed-version"
	req, err := http.NewRequest(http.MethodPut, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(licenseKeyHeader, licenseKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("report failed: %s", resp.Status)
	}
	return nil
}

// FetchAPIConfig returns the appsettings document for an API deployment.
func FetchAPIConfig(baseURL, licenseKey string, licenseID int64) (map[string]any, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/config/api/"+strconv.FormatInt(licenseID, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(licenseKeyHeader, licenseKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch config failed: %s", resp.Status)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

func main() {
	const base = "http://localhost:8080"

	res, err := CheckForUpdate(base, 3, "1.0.0", 2)
	if err != nil {
		panic(err)
	}
	if !res.HasUpdate {
		fmt.Println("up to date")
		return
	}
	fmt.Printf("%d update(s), latest %s\n", len(res.RequiredUpdates), res.Latest.Version)

	// install packages in order, then
	if err := ReportInstalledVersion(base, "demo-acme-fleet-key", 4, res.Latest.Version); err != nil {
		panic(err)
	}
}
