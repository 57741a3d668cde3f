package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"pushfile/pkg/github"
)

var errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()

var pastTense = map[github.ChangeType]string{
	github.ChangeTypeCreate: "Created",
	github.ChangeTypeUpdate: "Updated",
	github.ChangeTypeDelete: "Removed",
}

var conditional = map[github.ChangeType]string{
	github.ChangeTypeCreate: "create",
	github.ChangeTypeUpdate: "update",
	github.ChangeTypeDelete: "remove",
}

// printResult writes the outcome of a push to w
func printResult(w io.Writer, result *github.Result) {
	if result.Type == github.ChangeTypeNone || result.Commit == nil {
		fmt.Fprintln(w, "No changes to push")
		return
	}

	fmt.Fprintf(w, "%s %s\n", pastTense[result.Type], result.Path)
	fmt.Fprintf(w, "Pushed %s to %s\n", result.Commit.ShortSHA(), result.Branch)
}

// printDryRun writes the change a push would make
func printDryRun(w io.Writer, plan *github.ReconciliationPlan) {
	if !plan.HasChanges() {
		fmt.Fprintln(w, "No changes to push")
		return
	}
	fmt.Fprintf(w, "Would %s %s on %s\n", conditional[plan.Type], plan.Path, plan.Branch)
}

// printError writes err to w, followed by setup help for rejected tokens
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorPrefix("Error:"), err)
	if github.IsAuthError(err) {
		fmt.Fprintf(w, "\n%s\n", github.GetAuthInstructions())
	}
}
