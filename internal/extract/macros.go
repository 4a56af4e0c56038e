package extract

import (
	"regexp"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
)

var macroCallNames = []string{"loadMacros", "includePGproblem"}

var macroFilenameRx = regexp.MustCompile(`['"]([^'"]+\.(?:pl|pg))['"]`)

// Macros finds loadMacros and includePGproblem invocations in the code
// view and returns the referenced filenames, deduplicated in first-seen
// order.
func Macros(codeView string, ix *tokenizer.LineIndex) (loadMacros, includes []string) {
	calls := tokenizer.ScanCalls(codeView, macroCallNames, ix)
	loadSeen := map[string]bool{}
	inclSeen := map[string]bool{}

	for _, call := range calls {
		for _, m := range macroFilenameRx.FindAllStringSubmatch(call.ArgText, -1) {
			filename := m[1]
			switch call.Name {
			case "loadMacros":
				if !loadSeen[filename] {
					loadSeen[filename] = true
					loadMacros = append(loadMacros, filename)
				}
			case "includePGproblem":
				if !inclSeen[filename] {
					inclSeen[filename] = true
					includes = append(includes, filename)
				}
			}
		}
	}
	return loadMacros, includes
}
