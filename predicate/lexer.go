package predicate

import "github.com/arnodel/grammar"

var tokenise = grammar.SimpleTokeniser([]grammar.TokenDef{
	{
		Ptn: `\s+`,
	},
	{
		Name: "keyword",
		Ptn:  `and\b|or\b|not\b|in\b|true\b|false\b`,
	},
	{
		Name: "ident",
		Ptn:  `[a-zA-Z_][a-zA-Z0-9_]*`,
	},
	{
		Name: "int",
		Ptn:  `-?[0-9]+`,
	},
	{
		Name: "comma",
		Ptn:  `,`,
	},
	{
		Name: "op",
		Ptn:  `\.\.|[()\[\]]`,
	},
	{
		Name: "string",
		Ptn:  `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`,
	},
})
