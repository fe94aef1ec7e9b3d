package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"golang.org/x/term"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidChoice    = errors.New("invalid choice")
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var getSimpleText = GetSimpleText
var getPassword = GetPassword

// GetSimpleText writes prompt to w and returns the next line from reader
// with surrounding whitespace removed. A final line without a newline is
// still returned.
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo. The caller
// wipes the result.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// getNewPassword asks twice and fails when the entries differ.
func getNewPassword(w io.Writer) ([]byte, error) {
	pw, err := getPassword(w)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(w, "Repeat. ")
	again, err := getPassword(w)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(again)

	if !bytes.Equal(pw, again) {
		common.WipeByteArray(pw)
		return nil, ErrPasswordMismatch
	}
	return pw, nil
}

// getChoice reads one of options, case-insensitively.
func getChoice(reader *bufio.Reader, prompt string, options []string, w io.Writer) (string, error) {
	answer, err := getSimpleText(reader, fmt.Sprintf("%s (%s)", prompt, strings.Join(options, ", ")), w)
	if err != nil {
		return "", err
	}
	answer = strings.ToLower(answer)
	if !slices.Contains(options, answer) {
		return "", fmt.Errorf("%w: %q", ErrInvalidChoice, answer)
	}
	return answer, nil
}
