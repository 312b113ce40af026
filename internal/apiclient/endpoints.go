package apiclient

import (
	"context"

	"github.com/phylum-dev/cli-go/internal/depfile"
)

// JobStatus enumerates a server-assigned job's state (§3 Job/analysis
// result; the CLI only stores the id plus enough context to render
// results).
type JobStatus struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// AnalyzeRequest is the body for a job submission (§4.8 analyze()).
type AnalyzeRequest struct {
	Packages []depfile.Package `json:"packages"`
	Project  string            `json:"project,omitempty"`
	Group    string            `json:"group,omitempty"`
	Org      string            `json:"org,omitempty"`
	Label    string            `json:"label,omitempty"`
}

// Analyze submits packages for analysis, returning the server-assigned job
// id.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.Do(ctx, "POST", "v1/jobs", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// GetJobStatus retrieves the current status of a submitted job.
func (c *Client) GetJobStatus(ctx context.Context, jobID string, ignoredPackages []depfile.Package) (*JobStatus, error) {
	var resp JobStatus
	body := struct {
		IgnoredPackages []depfile.Package `json:"ignored_packages,omitempty"`
	}{IgnoredPackages: ignoredPackages}
	if err := c.Do(ctx, "POST", "v1/jobs/"+jobID, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PolicyCheckResult is checkPackages's projection; PolicyCheckRaw carries
// the full structured response (§4.8's raw/projected pairing).
type PolicyCheckResult struct {
	PassedPolicy bool `json:"passed_policy"`
}

// CheckPackagesRaw performs a synchronous policy check and returns the full
// structured server response.
func (c *Client) CheckPackagesRaw(ctx context.Context, pkgs []depfile.Package) (map[string]any, error) {
	var resp map[string]any
	if err := c.Do(ctx, "POST", "v1/check", struct {
		Packages []depfile.Package `json:"packages"`
	}{pkgs}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CheckPackages returns the projected pass/fail result.
func (c *Client) CheckPackages(ctx context.Context, pkgs []depfile.Package) (*PolicyCheckResult, error) {
	raw, err := c.CheckPackagesRaw(ctx, pkgs)
	if err != nil {
		return nil, err
	}
	passed, _ := raw["passed_policy"].(bool)
	return &PolicyCheckResult{PassedPolicy: passed}, nil
}

// UserInfo is getUserInfo's projection.
type UserInfo struct {
	Email string `json:"email"`
	Sub   string `json:"sub"`
}

func (c *Client) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.Do(ctx, "GET", "v1/user", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Group and Project are the thin shapes getGroups/getProjects return.
type Group struct {
	Name string `json:"name"`
}

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) GetGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.Do(ctx, "GET", "v1/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (c *Client) GetProjects(ctx context.Context, group string) ([]Project, error) {
	endpoint := "v1/projects"
	if group != "" {
		endpoint += "?group=" + group
	}
	var projects []Project
	if err := c.Do(ctx, "GET", endpoint, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProjectStatus enumerates createProject's outcome (§4.8).
type CreateProjectStatus string

const (
	ProjectCreated CreateProjectStatus = "Created"
	ProjectExists  CreateProjectStatus = "Exists"
)

type CreateProjectResult struct {
	ID     string              `json:"id"`
	Status CreateProjectStatus `json:"status"`
}

func (c *Client) CreateProject(ctx context.Context, name, group, repositoryURL, org string) (*CreateProjectResult, error) {
	var resp CreateProjectResult
	body := struct {
		Name          string `json:"name"`
		Group         string `json:"group,omitempty"`
		RepositoryURL string `json:"repository_url,omitempty"`
		Org           string `json:"org,omitempty"`
	}{name, group, repositoryURL, org}
	if err := c.Do(ctx, "POST", "v1/projects", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteProject(ctx context.Context, name, group, org string) error {
	endpoint := "v1/projects/" + name
	return c.Do(ctx, "DELETE", endpoint, struct {
		Group string `json:"group,omitempty"`
		Org   string `json:"org,omitempty"`
	}{group, org}, nil)
}

// PackageDetails is getPackageDetails's result.
type PackageDetails struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Ecosystem string `json:"ecosystem"`
	RiskScore int    `json:"risk_score"`
}

func (c *Client) GetPackageDetails(ctx context.Context, name, version, ecosystem string) (*PackageDetails, error) {
	var resp PackageDetails
	endpoint := "v1/packages/" + ecosystem + "/" + name + "/" + version
	if err := c.Do(ctx, "GET", endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
