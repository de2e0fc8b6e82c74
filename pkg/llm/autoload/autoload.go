// Package autoload registers all built-in LLM providers via side effects.
// Import it for its init calls:
//
//	import _ "sleuth/pkg/llm/autoload"
package autoload

import (
	_ "sleuth/pkg/llm/gemini"
	_ "sleuth/pkg/llm/ollama"
	_ "sleuth/pkg/llm/openailm"
)
