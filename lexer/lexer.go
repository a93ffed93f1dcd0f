package lexer

import "regexp"

// language is the single unified pattern the scanner matches against:
// an identifier, a signed decimal literal, or one punctuator. Anything
// in between these matches — whitespace, stray characters — is
// silently discarded. The pattern alone matches "a-1" as "a" and "-1";
// Scan then splits a signed literal that directly follows an operand,
// so "a-1" tokenizes as three tokens while "-1" tokenizes as one signed
// literal.
var language = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_]*|-?[0-9]+|[,;(){}+\-*/=!<>]`)

var literalPattern = regexp.MustCompile(`^-?[0-9]+$`)

// Scan tokenizes src in one pass and returns the resulting tokens,
// always terminated by a KindEOF sentinel. Malformed input never
// produces an error here — anything the pattern doesn't recognize is
// dropped, and the parser is left to reject whatever garbage results.
func Scan(src string) []Token {
	words := language.FindAllString(src, -1)
	tokens := make([]Token, 0, len(words)+1)

	for _, w := range words {
		var prev Kind
		if len(tokens) > 0 {
			prev = tokens[len(tokens)-1].Kind
		}
		switch {
		case len(w) > 1 && w[0] == '-' && (prev == KindID || prev == KindLiteral || prev == KindRightParen):
			// After an operand, a minus glued to digits is a subtraction.
			tokens = append(tokens, Token{Kind: KindSub, Lexeme: "-"}, Token{Kind: KindLiteral, Lexeme: w[1:]})
		case literalPattern.MatchString(w):
			tokens = append(tokens, Token{Kind: KindLiteral, Lexeme: w})
		case punctuators[w] != "":
			tokens = append(tokens, Token{Kind: punctuators[w], Lexeme: w})
		case keywords[w] != "":
			tokens = append(tokens, Token{Kind: keywords[w], Lexeme: w})
		default:
			tokens = append(tokens, Token{Kind: KindID, Lexeme: w})
		}
	}

	tokens = append(tokens, Token{Kind: KindEOF, Lexeme: "$"})
	return tokens
}
