package prompts

import _ "embed"

// Embedded prompt files

//go:embed classify_query.txt
var classifyQuery string

//go:embed refine_query.txt
var refineQuery string

//go:embed direct_answer.txt
var directAnswer string

//go:embed grounded_answer.txt
var groundedAnswer string
