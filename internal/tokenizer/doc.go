// Package tokenizer converts raw PG source text into an ordered sequence of
// classified spans (code, comment, string, heredoc body, markup block).
//
// The scanner is a line-driven state machine, not a Perl grammar. It tracks
// just enough lexical state to keep downstream extractors from reading
// signals out of comments, string literals, heredoc bodies, or markup
// blocks: single/double quote state with backslash escapes inside a line,
// a FIFO queue of pending heredoc terminators, and BEGIN_*/END_* markup
// block delimiters.
//
// Heredocs declared on one line close in declaration order: with tags A
// then B on a single line, body text up to A's terminator belongs to A and
// text between A's and B's terminators belongs to B.
//
// The span sequence is total and non-overlapping; concatenating span text
// reproduces the input exactly. An unterminated heredoc or markup block is
// not fatal: the remainder of the file becomes that span's body and a
// diagnostic is recorded on the result.
//
// CodeView renders a span sequence back into a same-length string where
// only code and string-literal bytes survive, so regex and call scanning
// over the view keeps byte offsets aligned with the raw text.
package tokenizer
