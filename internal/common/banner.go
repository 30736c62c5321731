package common

import (
	"fmt"
	"strconv"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner with the settings an operator
// usually needs to confirm: listen address, database location and the
// retention policy.
func PrintBanner(config *Config) {
	b := banner.New().SetStyle(banner.StyleDouble).SetWidth(60)

	b.PrintTopLine()
	b.PrintCenteredText("FOLIO")
	b.PrintCenteredText("Manuscript transcription editor")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", GetFullVersion(), 12)
	b.PrintKeyValue("Address", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port), 12)
	b.PrintKeyValue("Database", config.Storage.Badger.Path, 12)
	b.PrintKeyValue("Ordering", config.Ordering.DefaultMode, 12)
	b.PrintKeyValue("Retention", retentionSummary(config.Versions), 12)
	b.PrintBottomLine()
}

func retentionSummary(v VersionsConfig) string {
	s := strconv.Itoa(v.MaxVersions) + " versions / " + strconv.Itoa(v.RetentionDays) + " days"
	if v.SweepEnabled {
		s += " (sweep " + v.SweepSchedule + ")"
	}
	return s
}
