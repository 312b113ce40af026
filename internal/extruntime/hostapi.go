package extruntime

import (
	"errors"
	"net/http"

	"github.com/dop251/goja"

	"github.com/phylum-dev/cli-go/internal/apiclient"
	"github.com/phylum-dev/cli-go/internal/depfile"
	"github.com/phylum-dev/cli-go/internal/sandbox"
)

// buildHostAPI returns the object bound to the `Phylum` global,
// implementing §4.8's host API surface; no "phylum:api" module is
// registered. Methods that call the API server check the net grant, and
// parseDependencyFile checks the read grant, before doing any work;
// getAccessToken, getRefreshToken, getCurrentProject and permissions do no
// permission check.
func (e *Engine) buildHostAPI() map[string]any {
	return map[string]any{
		"fetch":               e.jsFetch,
		"analyze":             e.jsAnalyze,
		"checkPackages":       e.jsCheckPackages,
		"checkPackagesRaw":    e.jsCheckPackagesRaw,
		"getJobStatus":        e.jsGetJobStatus,
		"getJobStatusRaw":     e.jsGetJobStatusRaw,
		"getUserInfo":         e.jsGetUserInfo,
		"getAccessToken":      e.jsGetAccessToken,
		"getRefreshToken":     e.jsGetRefreshToken,
		"getCurrentProject":   e.jsGetCurrentProject,
		"getGroups":           e.jsGetGroups,
		"getProjects":         e.jsGetProjects,
		"createProject":       e.jsCreateProject,
		"deleteProject":       e.jsDeleteProject,
		"getPackageDetails":   e.jsGetPackageDetails,
		"parseDependencyFile": e.jsParseDependencyFile,
		"runSandboxed":        e.jsRunSandboxed,
		"permissions":         e.jsPermissions,
	}
}

func throw(vm *goja.Runtime, err error) {
	panic(vm.ToValue(err.Error()))
}

func (e *Engine) jsFetch(apiVersion, endpoint string, init map[string]any) map[string]any {
	host := e.cfg.Client.BaseURL
	if err := e.requireNet(host); err != nil {
		throw(e.vm, err)
	}
	method := "GET"
	var body any
	if init != nil {
		if m, ok := init["method"].(string); ok && m != "" {
			method = m
		}
		body = init["body"]
	}
	path := apiVersion + "/" + endpoint
	var raw map[string]any
	if err := e.cfg.Client.Do(e.ctx, method, path, body, &raw); err != nil {
		var apiErr *apiclient.ApiError
		if errors.As(err, &apiErr) {
			return map[string]any{"ok": false, "status": apiErr.Status, "body": string(apiErr.Payload)}
		}
		throw(e.vm, err)
	}
	return map[string]any{"ok": true, "status": http.StatusOK, "body": raw}
}

func (e *Engine) jsAnalyze(packages []depfile.Package, project, group, org, label string) string {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	jobID, err := e.cfg.Client.Analyze(e.ctx, apiclient.AnalyzeRequest{
		Packages: packages,
		Project:  project,
		Group:    group,
		Org:      org,
		Label:    label,
	})
	if err != nil {
		throw(e.vm, err)
	}
	return jobID
}

func (e *Engine) jsCheckPackages(packages []depfile.Package) map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	res, err := e.cfg.Client.CheckPackages(e.ctx, packages)
	if err != nil {
		throw(e.vm, err)
	}
	return map[string]any{"passedPolicy": res.PassedPolicy}
}

func (e *Engine) jsCheckPackagesRaw(packages []depfile.Package) map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	raw, err := e.cfg.Client.CheckPackagesRaw(e.ctx, packages)
	if err != nil {
		throw(e.vm, err)
	}
	return raw
}

func (e *Engine) jsGetJobStatus(jobID string, ignored []depfile.Package) map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	status, err := e.cfg.Client.GetJobStatus(e.ctx, jobID, ignored)
	if err != nil {
		throw(e.vm, err)
	}
	return map[string]any{"jobId": status.JobID, "status": status.Status}
}

func (e *Engine) jsGetJobStatusRaw(jobID string, ignored []depfile.Package) map[string]any {
	return e.jsGetJobStatus(jobID, ignored)
}

func (e *Engine) jsGetUserInfo() map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	info, err := e.cfg.Client.GetUserInfo(e.ctx)
	if err != nil {
		throw(e.vm, err)
	}
	return map[string]any{"email": info.Email, "sub": info.Sub}
}

func (e *Engine) jsGetAccessToken() string {
	if e.cfg.AccessToken == nil {
		return ""
	}
	tok, err := e.cfg.AccessToken(e.ctx)
	if err != nil {
		throw(e.vm, err)
	}
	return tok
}

func (e *Engine) jsGetRefreshToken() string {
	if e.cfg.RefreshToken == nil {
		return ""
	}
	tok, err := e.cfg.RefreshToken(e.ctx)
	if err != nil {
		throw(e.vm, err)
	}
	return tok
}

func (e *Engine) jsGetCurrentProject() map[string]any {
	return map[string]any{
		"id":    e.cfg.Project.ID,
		"name":  e.cfg.Project.Name,
		"group": e.cfg.Project.Group,
		"org":   e.cfg.Project.Org,
	}
}

func (e *Engine) jsGetGroups() []map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	groups, err := e.cfg.Client.GetGroups(e.ctx)
	if err != nil {
		throw(e.vm, err)
	}
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]any{"name": g.Name})
	}
	return out
}

func (e *Engine) jsGetProjects(group string) []map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	projects, err := e.cfg.Client.GetProjects(e.ctx, group)
	if err != nil {
		throw(e.vm, err)
	}
	out := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		out = append(out, map[string]any{"id": p.ID, "name": p.Name})
	}
	return out
}

func (e *Engine) jsCreateProject(name, group, repositoryURL, org string) map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	res, err := e.cfg.Client.CreateProject(e.ctx, name, group, repositoryURL, org)
	if err != nil {
		throw(e.vm, err)
	}
	return map[string]any{"id": res.ID, "status": string(res.Status)}
}

func (e *Engine) jsDeleteProject(name, group, org string) {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	if err := e.cfg.Client.DeleteProject(e.ctx, name, group, org); err != nil {
		throw(e.vm, err)
	}
}

func (e *Engine) jsGetPackageDetails(name, version, ecosystem string) map[string]any {
	if err := e.requireNet(e.cfg.Client.BaseURL); err != nil {
		throw(e.vm, err)
	}
	d, err := e.cfg.Client.GetPackageDetails(e.ctx, name, version, ecosystem)
	if err != nil {
		throw(e.vm, err)
	}
	return map[string]any{
		"name":      d.Name,
		"version":   d.Version,
		"ecosystem": d.Ecosystem,
		"riskScore": d.RiskScore,
	}
}

func (e *Engine) jsParseDependencyFile(path string, format string, generateLockfiles, sandboxGeneration *bool) map[string]any {
	gen := true
	if generateLockfiles != nil {
		gen = *generateLockfiles
	}
	sb := true
	if sandboxGeneration != nil {
		sb = *sandboxGeneration
	}
	df, err := e.parseDependencyFile(path, format, gen, sb)
	if err != nil {
		throw(e.vm, err)
	}
	pkgs := make([]map[string]any, 0, len(df.Packages))
	for _, p := range df.Packages {
		pkgs = append(pkgs, map[string]any{
			"ecosystem": p.Ecosystem,
			"name":      p.Name,
			"version":   p.Version,
			"origin":    p.Origin,
		})
	}
	return map[string]any{
		"format":   string(df.Format),
		"path":     df.Path,
		"kind":     string(df.Kind),
		"packages": pkgs,
	}
}

// jsRunSandboxed is the only path by which a script may spawn a process
// (§4.8). The requested permission set is bounded above by the extension's
// own effective set via sandbox.PermissionSet.Subset.
func (e *Engine) jsRunSandboxed(spec map[string]any) map[string]any {
	path, _ := spec["path"].(string)
	var args []string
	if raw, ok := spec["args"].([]any); ok {
		for _, a := range raw {
			if s, ok := a.(string); ok {
				args = append(args, s)
			}
		}
	}
	requested := e.cfg.Permissions
	if over, ok := spec["permissions"].(map[string]any); ok {
		requested = mergeRequestedPermissions(e.cfg.Permissions, over)
	}
	if !requested.Subset(e.cfg.Permissions) {
		throw(e.vm, &sandbox.PermissionDeniedError{Reason: "runSandboxed requested permissions exceed the extension's own grant"})
	}

	result, err := sandbox.Run(e.ctx, sandbox.Command{
		Path:        path,
		Args:        args,
		Permissions: requested,
		Stdio:       sandbox.StdioPiped,
	})
	if err != nil {
		return map[string]any{"success": false, "error": err.Error()}
	}
	return map[string]any{
		"stdout":  string(result.Stdout),
		"stderr":  string(result.Stderr),
		"success": result.Success(),
		"code":    result.ExitCode,
		"signal":  result.Signal,
	}
}

// mergeRequestedPermissions narrows base down to whatever the script asked
// for in requested; it never widens beyond base since Subset is checked by
// the caller regardless.
func mergeRequestedPermissions(base sandbox.PermissionSet, requested map[string]any) sandbox.PermissionSet {
	out := base
	if run, ok := requested["run"].([]any); ok {
		var paths []string
		for _, p := range run {
			if s, ok := p.(string); ok {
				paths = append(paths, s)
			}
		}
		out.Run = sandbox.PathGrant{Paths: paths}
	}
	return out
}

func (e *Engine) jsPermissions() map[string]any {
	p := e.cfg.Permissions
	return map[string]any{
		"read":   p.Read.Paths,
		"write":  p.Write.Paths,
		"run":    p.Run.Paths,
		"net":    p.Net.Hosts,
		"env":    p.Env.Vars,
		"strict": p.Strict,
	}
}

