package discovery

import "strings"

// category hints checked in order; the first hit wins
var categoryHints = []struct {
	cat   Category
	words []string
}{
	{CategorySecurity, []string{"vulnerab", "exploit", "security", "cve-", "malware", "prompt injection", "sandbox"}},
	{CategoryPrivacy, []string{"privacy", "local-first", "local first", "offline", "encrypt", "self-host", "self host"}},
	{CategoryModel, []string{"model", "weights", "llm", "fine-tun", "gguf", "checkpoint"}},
	{CategoryIntegration, []string{"mcp", "plugin", "integration", "connector", "extension", "api"}},
	{CategoryInfrastructure, []string{"kubernetes", "docker", "deploy", "database", "server", "infra", "gpu"}},
	{CategoryWorkflow, []string{"workflow", "automation", "automate", "pipeline", "agent"}},
	{CategorySkill, []string{"prompt", "tutorial", "guide", "how to", "skill"}},
}

// GuessCategory maps free text onto a category, defaulting to tool
func GuessCategory(text string) Category {
	t := strings.ToLower(text)
	for _, h := range categoryHints {
		for _, w := range h.words {
			if strings.Contains(t, w) {
				return h.cat
			}
		}
	}
	return CategoryTool
}
