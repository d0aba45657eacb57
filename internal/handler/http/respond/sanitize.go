package respond

import "regexp"

type redaction struct {
	re   *regexp.Regexp
	repl string
}

// Order matters: the Anthropic key prefix is a superset of the OpenAI one.
var redactions = []redaction{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	{regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._\-]+`), "Bearer ****"},
	{regexp.MustCompile(`hooks\.slack\.com/services/[A-Za-z0-9/]+`), "hooks.slack.com/services/****"},
	{regexp.MustCompile(`(discord(?:app)?\.com/api/webhooks/\d+)/[A-Za-z0-9_\-]+`), "$1/****"},
	{regexp.MustCompile(`://([^:/@]+):([^@]+)@`), "://$1:****@"},
}

// SanitizeError returns err's message with API keys, bearer tokens, webhook
// secrets and DSN passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range redactions {
		msg = r.re.ReplaceAllString(msg, r.repl)
	}
	return msg
}
