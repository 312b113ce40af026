// Package orchestrate ties the locator, generator, parser, and API client
// together for the analyze/parse/status commands (§2 component 11): locate
// dependency files, resolve each through the lockifest/generation pipeline,
// and submit or render the result.
package orchestrate

import (
	"context"
	"fmt"
	"os"

	"github.com/phylum-dev/cli-go/internal/apiclient"
	"github.com/phylum-dev/cli-go/internal/depfile"
	"github.com/phylum-dev/cli-go/internal/genlock"
	"github.com/phylum-dev/cli-go/internal/locate"
)

// ResolveOptions controls how dependency files are turned into packages.
type ResolveOptions struct {
	NoGeneration bool // §4.3 step 1 fail-closed
	SkipSandbox  bool // §4.3 step 6 escape hatch
}

// ResolvedFile pairs a located dependency file with the packages it
// ultimately yielded, plus which path was actually read (a manifest's
// sibling lockfile, its own generated lockfile, or itself).
type ResolvedFile struct {
	Entry    locate.Entry
	Resolved *depfile.DependencyFile
}

// Discover walks root and resolves every dependency file found, preferring
// an existing sibling lockfile over generation (§4.4), and falling through
// to generation only when no lockfile exists for a manifest (§4.2, §4.3).
func Discover(ctx context.Context, root string, opts ResolveOptions) ([]ResolvedFile, []error) {
	entries, err := locate.Walk(root)
	if err != nil {
		return nil, []error{err}
	}

	var results []ResolvedFile
	var errs []error
	for _, entry := range entries {
		resolved, err := resolveEntry(ctx, entry, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("orchestrate: %s: %w", entry.Path, err))
			continue
		}
		results = append(results, ResolvedFile{Entry: entry, Resolved: resolved})
	}
	return results, errs
}

func resolveEntry(ctx context.Context, entry locate.Entry, opts ResolveOptions) (*depfile.DependencyFile, error) {
	if entry.Kind == depfile.KindLockfile {
		return parsePath(entry.Path, entry.Format, depfile.KindLockfile)
	}

	// Lockifest policy (§4.2): some "manifests" (requirements.txt) parse
	// directly as lockfiles; depfile.Parse's registered parser already
	// encodes that fallthrough via ParseError, so try it first.
	if df, err := parsePath(entry.Path, entry.Format, entry.Kind); err == nil {
		return df, nil
	}

	if pairedPath, pairedFormat, ok := locate.PairedLockfile(entry.Path, entry.Format); ok {
		return parsePath(pairedPath, pairedFormat, depfile.KindLockfile)
	}

	return genlock.Generate(ctx, entry.Path, entry.Format, genlock.Options{
		NoGeneration: opts.NoGeneration,
		SkipSandbox:  opts.SkipSandbox,
	})
}

func parsePath(path string, format depfile.Format, kind depfile.Kind) (*depfile.DependencyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return depfile.Parse(path, format, data, kind)
}

// AnalyzeResult is the outcome of submitting resolved packages for
// analysis, including the policy-fail/exit-code contract of §8 scenario 6.
type AnalyzeResult struct {
	JobID           string
	JobLink         string
	PassedPolicy    bool
	PolicyEvaluated bool
}

// Analyze submits every resolved file's packages (deduped across files) and
// fetches the job status once, returning enough information for the CLI
// layer to choose an exit code. It does not wait for the job to reach a
// terminal state; PolicyEvaluated is false when that one status is neither
// "complete" nor "policy_failed".
func Analyze(ctx context.Context, client *apiclient.Client, files []ResolvedFile, project, group, org, label string, apiBaseURL string) (*AnalyzeResult, error) {
	var all []depfile.Package
	for _, f := range files {
		all = append(all, f.Resolved.Packages...)
	}
	all = depfile.Dedup(all)

	jobID, err := client.Analyze(ctx, apiclient.AnalyzeRequest{
		Packages: all,
		Project:  project,
		Group:    group,
		Org:      org,
		Label:    label,
	})
	if err != nil {
		return nil, err
	}

	status, err := client.GetJobStatus(ctx, jobID, nil)
	if err != nil {
		// The job link is still meaningful even if polling failed; the
		// caller can render it and report the polling error separately.
		return &AnalyzeResult{JobID: jobID, JobLink: jobLink(apiBaseURL, jobID)}, err
	}

	return &AnalyzeResult{
		JobID:           jobID,
		JobLink:         jobLink(apiBaseURL, jobID),
		PassedPolicy:    status.Status != "policy_failed",
		PolicyEvaluated: status.Status == "complete" || status.Status == "policy_failed",
	}, nil
}

func jobLink(apiBaseURL, jobID string) string {
	return apiBaseURL + "/job/" + jobID
}
