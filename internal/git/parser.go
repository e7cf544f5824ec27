package git

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/Kamar-Folarin/repostats/internal/errors"
	"github.com/Kamar-Folarin/repostats/internal/models"
)

// FieldSeparator splits the fields of a log line. Author names and
// subjects may contain other punctuation, so a pipe is used.
const FieldSeparator = "|"

const logFields = 4

var (
	// Match "3 files changed" / "1 file changed"
	filesChangedRegex = regexp.MustCompile(`^(\d+) files? changed$`)
	// Match "8 insertions(+)" / "1 insertion(+)"
	insertionsRegex = regexp.MustCompile(`^(\d+) insertions?\(\+\)$`)
	// Match "4 deletions(-)" / "1 deletion(-)"
	deletionsRegex = regexp.MustCompile(`^(\d+) deletions?\(-\)$`)
)

// ParseLogLine parses "hash|owner|relative_time|message". Everything after
// the third separator belongs to the message, pipes included.
func ParseLogLine(line string) (*models.Commit, error) {
	parts := strings.SplitN(line, FieldSeparator, logFields)
	if len(parts) < logFields {
		return nil, apperrors.NewMalformedLogLineError(line, len(parts))
	}
	return models.NewCommit(parts[0], parts[1], parts[2], parts[3]), nil
}

// FormatLogLine is the inverse of ParseLogLine
func FormatLogLine(c *models.Commit) string {
	return strings.Join([]string{c.Hash, c.Owner, c.RelativeTime, c.Message}, FieldSeparator)
}

// ParseDiffStat reads the insertion and deletion counts from the last
// non-empty line of a diff stat report. The files-changed clause is
// mandatory; a missing insertion or deletion clause counts as zero.
func ParseDiffStat(report string) (models.Stats, error) {
	summary := lastLine(report)
	clauses := strings.Split(summary, ",")

	if !filesChangedRegex.MatchString(strings.TrimSpace(clauses[0])) {
		return models.Stats{}, apperrors.NewUnparsableDiffStatError(summary, nil)
	}

	var stats models.Stats
	var seenInsertions, seenDeletions bool
	for _, clause := range clauses[1:] {
		clause = strings.TrimSpace(clause)
		switch {
		case insertionsRegex.MatchString(clause) && !seenInsertions:
			n, err := atoiClause(insertionsRegex, clause)
			if err != nil {
				return models.Stats{}, apperrors.NewUnparsableDiffStatError(summary, err)
			}
			stats.Insertions = n
			seenInsertions = true
		case deletionsRegex.MatchString(clause) && !seenDeletions:
			n, err := atoiClause(deletionsRegex, clause)
			if err != nil {
				return models.Stats{}, apperrors.NewUnparsableDiffStatError(summary, err)
			}
			stats.Deletions = n
			seenDeletions = true
		default:
			return models.Stats{}, apperrors.NewUnparsableDiffStatError(summary, nil)
		}
	}

	return stats, nil
}

// ParseShortlog parses "<count>\t<name>" lines into a map
func ParseShortlog(output string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		countStr, name, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, apperrors.NewParseFailure("shortlog line without tab: "+strconv.Quote(line), nil)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return nil, apperrors.NewParseFailure("shortlog count is not an integer: "+strconv.Quote(line), err)
		}
		counts[name] += count
	}
	return counts, nil
}

// ParseMerges groups "owner|hash" lines by owner, keeping log order within
// each owner. The hash is taken after the last separator, so owners may
// contain pipes.
func ParseMerges(output string) (map[string][]string, error) {
	merges := make(map[string][]string)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		i := strings.LastIndex(line, FieldSeparator)
		if i < 0 {
			return nil, apperrors.NewParseFailure("merge line without separator: "+strconv.Quote(line), nil)
		}
		owner, hash := line[:i], line[i+1:]
		merges[owner] = append(merges[owner], hash)
	}
	return merges, nil
}

// ParseCount parses the output of rev-list --count
func ParseCount(output string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, apperrors.NewParseFailure("revision count is not an integer: "+strconv.Quote(output), err)
	}
	return count, nil
}

func lastLine(report string) string {
	lines := strings.Split(report, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func atoiClause(re *regexp.Regexp, clause string) (int, error) {
	m := re.FindStringSubmatch(clause)
	return strconv.Atoi(m[1])
}
