package deploy

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Validation failures for script filenames. The orchestrator classifies
// all of these as IGNORED outcomes, never FAILED.
var (
	// ErrNoDate indicates the filename has no YYYY_MM_DD date token.
	ErrNoDate = errors.New("no valid date in filename")

	// ErrNoVersion indicates the filename does not end in _v<N>.sql.
	ErrNoVersion = errors.New("no version in filename")

	// ErrInvalidDate indicates the date token matched syntactically but is
	// not a real calendar date (e.g. 2024_13_40).
	ErrInvalidDate = errors.New("invalid date in filename")
)

var (
	dateRegexp    = regexp.MustCompile(`\d{4}_\d{2}_\d{2}`)
	versionRegexp = regexp.MustCompile(`_v(\d+)\.sql$`)
)

// versionSentinel sorts scripts without a parseable version after every
// versioned script in a deployment.
const versionSentinel = 9999

const dateLayout = "2006_01_02"

type (
	// ScriptFile is a single changed file as delivered by the caller. The
	// content is opaque to this package beyond a pass-through to the
	// executor. ScriptFiles are never persisted.
	ScriptFile struct {
		// Path is the slash-delimited structural path of the file, e.g.
		// "sql_data/deployment/SCT-1/scripts/add_users_2024_01_01_v1.sql".
		Path string

		// Content is the raw script body handed to the executor verbatim.
		Content string
	}

	// ScriptName holds the tokens extracted from a well-formed script
	// filename.
	ScriptName struct {
		// Name is the base filename the tokens were parsed from.
		Name string

		// Date is the embedded YYYY_MM_DD date, midnight UTC.
		Date time.Time

		// Version is the numeric version from the trailing _v<N>.sql token.
		Version int
	}
)

// ParseScriptName validates a script's base filename and extracts its
// embedded date and version.
//
// A well-formed name contains a YYYY_MM_DD date token (first match wins
// when several substrings qualify) and ends in _v<N>.sql. Returns
// ErrNoDate, ErrNoVersion, or ErrInvalidDate when the name is rejected.
//
// Example usage:
//
//	sn, err := deploy.ParseScriptName("add_users_2024_01_01_v2.sql")
//	if err != nil {
//		// reject: err describes the missing or malformed token
//	}
//	fmt.Println(sn.Date, sn.Version) // 2024-01-01 00:00:00 +0000 UTC, 2
func ParseScriptName(name string) (*ScriptName, error) {
	dateToken := dateRegexp.FindString(name)
	if dateToken == "" {
		return nil, ErrNoDate
	}

	version := versionRegexp.FindStringSubmatch(name)
	if version == nil {
		return nil, ErrNoVersion
	}

	date, err := time.ParseInLocation(dateLayout, dateToken, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}

	n, err := strconv.Atoi(version[1])
	if err != nil {
		// Regexp guarantees digits; only overflow can land here.
		return nil, ErrNoVersion
	}

	return &ScriptName{Name: name, Date: date, Version: n}, nil
}

// scriptVersion extracts the execution-order version from a base filename,
// independent of date validity. Names without a parseable version sort
// last via the sentinel.
func scriptVersion(name string) int {
	m := versionRegexp.FindStringSubmatch(name)
	if m == nil {
		return versionSentinel
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return versionSentinel
	}

	return n
}
