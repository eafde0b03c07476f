package main

import (
	goversion "github.com/caarlos0/go-version"
)

const website = "https://github.com/ZebulonRouseFrantzich/suiup"

// buildVersion assembles the --version output. Empty arguments keep the
// values go-version reads from the embedded build info.
func buildVersion(ver, commit, date, builtBy, treeState string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("suiup", "Install and switch between sui, walrus and mvr versions", website),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if ver != "" {
				i.GitVersion = ver
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}
