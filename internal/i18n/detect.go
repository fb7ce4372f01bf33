package i18n

import "strings"

// envLanguageVars are consulted in POSIX precedence order.
var envLanguageVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// DetectFromEnv returns the first bundled language named by the locale
// environment. getenv is usually os.Getenv.
func (c *Catalog) DetectFromEnv(getenv func(string) string) (string, bool) {
	if getenv == nil {
		return "", false
	}
	for _, name := range envLanguageVars {
		value := posixLocaleToTag(getenv(name))
		if value == "" {
			continue
		}
		if code, ok := c.Normalize(value); ok {
			return code, true
		}
	}
	return "", false
}

// posixLocaleToTag turns "pt_BR.UTF-8@euro" into "pt-BR". C and POSIX name no
// language.
func posixLocaleToTag(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	if value == "" || value == "C" || value == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(value, "_", "-")
}
