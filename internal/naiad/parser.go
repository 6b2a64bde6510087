package naiad

import (
	"fmt"
	"strconv"
	"time"
)

// A Parser turns program text into commands. Parsing is all or
// nothing: on error no command is returned.
type Parser interface {
	Parse(text string) ([]Command, error)
}

// ParseError reports an unexpected token, an unknown keyword or a
// truncated program. Index is the position of the offending token in
// the token stream, or the stream length if the input ended early.
type ParseError struct {
	Message string
	Index   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("token %d: %s", e.Index, e.Message)
}

type TokenParser struct {
	lexer Lexer
}

func NewParser(lexer Lexer) *TokenParser {
	return &TokenParser{lexer: lexer}
}

// Parse tokenizes and parses a whole program with the default lexer.
func Parse(text string) ([]Command, error) {
	return NewParser(NewLexer()).Parse(text)
}

func (p *TokenParser) Parse(text string) ([]Command, error) {
	tokens, err := p.lexer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	s := &tokenStream{tokens: tokens}
	res := []Command{}
	for s.done() == false {
		c, err := s.parseCommand()
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

type tokenStream struct {
	tokens []Token
	pos    int
}

func (s *tokenStream) done() bool {
	return s.pos >= len(s.tokens)
}

func (s *tokenStream) peekIs(kind TokenKind) bool {
	return s.done() == false && s.tokens[s.pos].Kind == kind
}

func (s *tokenStream) errorf(index int, format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Index: index}
}

func (s *tokenStream) expect(kind TokenKind) (Token, error) {
	if s.done() == true {
		return Token{}, s.errorf(s.pos, "unexpected end of input, expected %s", kind)
	}
	t := s.tokens[s.pos]
	if t.Kind != kind {
		return Token{}, s.errorf(s.pos, "expected %s, got %s", kind, t)
	}
	s.pos += 1
	return t, nil
}

func (s *tokenStream) expectAll(kinds ...TokenKind) error {
	for _, k := range kinds {
		if _, err := s.expect(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *tokenStream) parseCommand() (Command, error) {
	keywordIndex := s.pos
	keyword, err := s.expect(String)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(Colon); err != nil {
		return nil, err
	}

	var c Command
	switch keyword.Value {
	case EnableWateringKeyword:
		c, err = s.parseEnableWatering()
	case ChangeWateringKeyword:
		c, err = s.parseChangeWatering()
	case SetSensorPeriodicityKeyword:
		c, err = s.parseSetSensorPeriodicity()
	case EnableFertilizingKeyword, ChangeFertilizingKeyword:
		c, err = s.parseFertilizerVolume(keyword.Value)
	case ShowWateringKeyword, StopWateringKeyword, ResumeWateringKeyword,
		ShowHumidityKeyword, ShowFertilizingKeyword, StopFertilizingKeyword:
		c, err = s.parseZoneOnly(keyword.Value)
	default:
		return nil, s.errorf(keywordIndex, "unknown command '%s'", keyword.Value)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.expect(Semicolon); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *tokenStream) parseZoneOnly(keyword string) (Command, error) {
	zones, err := s.parseSelector()
	if err != nil {
		return nil, err
	}
	switch keyword {
	case ShowWateringKeyword:
		return ShowWatering{zones}, nil
	case StopWateringKeyword:
		return StopWatering{zones}, nil
	case ResumeWateringKeyword:
		return ResumeWatering{zones}, nil
	case ShowHumidityKeyword:
		return ShowHumidity{zones}, nil
	case ShowFertilizingKeyword:
		return ShowFertilizing{zones}, nil
	default:
		return StopFertilizing{zones}, nil
	}
}

func (s *tokenStream) parseEnableWatering() (Command, error) {
	var err error
	res := EnableWatering{}
	if res.Selector, err = s.parseSelector(); err != nil {
		return nil, err
	}
	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if res.FirstWatering, err = s.parseDatetime(); err != nil {
		return nil, err
	}
	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if res.Interval, err = s.parseDuration(); err != nil {
		return nil, err
	}
	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if res.WaterVolume, err = s.parseInt(); err != nil {
		return nil, err
	}
	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if res.WateringDuration, err = s.parseInt(); err != nil {
		return nil, err
	}
	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if res.HumidityRange, err = s.parseRange(); err != nil {
		return nil, err
	}
	return res, nil
}

// parseChangeWatering parses a selector followed by five comma
// separated slots. A slot is present only if it starts with an
// INTEGER token.
func (s *tokenStream) parseChangeWatering() (Command, error) {
	var err error
	res := ChangeWatering{}
	if res.Selector, err = s.parseSelector(); err != nil {
		return nil, err
	}

	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if s.peekIs(Integer) {
		v, err := s.parseDatetime()
		if err != nil {
			return nil, err
		}
		res.FirstWatering = &v
	}

	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if s.peekIs(Integer) {
		v, err := s.parseDuration()
		if err != nil {
			return nil, err
		}
		res.Interval = &v
	}

	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if s.peekIs(Integer) {
		v, err := s.parseInt()
		if err != nil {
			return nil, err
		}
		res.WaterVolume = &v
	}

	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if s.peekIs(Integer) {
		v, err := s.parseNumeric()
		if err != nil {
			return nil, err
		}
		res.WateringDuration = &v
	}

	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if s.peekIs(Integer) {
		v, err := s.parseRange()
		if err != nil {
			return nil, err
		}
		res.HumidityRange = &v
	}

	return res, nil
}

func (s *tokenStream) parseSetSensorPeriodicity() (Command, error) {
	var err error
	res := SetSensorPeriodicity{}
	if res.Selector, err = s.parseSelector(); err != nil {
		return nil, err
	}
	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	if res.Interval, err = s.parseDuration(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *tokenStream) parseFertilizerVolume(keyword string) (Command, error) {
	zones, err := s.parseSelector()
	if err != nil {
		return nil, err
	}
	if err = s.expectAll(Comma); err != nil {
		return nil, err
	}
	volume, err := s.parseInt()
	if err != nil {
		return nil, err
	}
	if keyword == EnableFertilizingKeyword {
		return EnableFertilizing{Selector: zones, FertilizerVolume: volume}, nil
	}
	return ChangeFertilizing{Selector: zones, FertilizerVolume: volume}, nil
}

func (s *tokenStream) parseInt() (int, error) {
	t, err := s.expect(Integer)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, s.errorf(s.pos-1, "invalid integer '%s'", t.Value)
	}
	return v, nil
}

// parseNumeric parses INTEGER [DOT INTEGER].
func (s *tokenStream) parseNumeric() (float64, error) {
	start := s.pos
	t, err := s.expect(Integer)
	if err != nil {
		return 0, err
	}
	literal := t.Value
	if s.peekIs(Dot) {
		s.pos += 1
		frac, err := s.expect(Integer)
		if err != nil {
			return 0, err
		}
		literal += "." + frac.Value
	}
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, s.errorf(start, "invalid number '%s'", literal)
	}
	return v, nil
}

func (s *tokenStream) parseRange() (HumidityRange, error) {
	min, err := s.parseInt()
	if err != nil {
		return HumidityRange{}, err
	}
	if _, err := s.expect(Hyphen); err != nil {
		return HumidityRange{}, err
	}
	max, err := s.parseInt()
	if err != nil {
		return HumidityRange{}, err
	}
	return HumidityRange{Min: min, Max: max}, nil
}

// parseSelector parses INTEGER or a parenthesized, comma separated
// list of INTEGER and INTEGER-INTEGER items.
func (s *tokenStream) parseSelector() (Selector, error) {
	if s.peekIs(Integer) {
		v, err := s.parseInt()
		if err != nil {
			return nil, err
		}
		return Selector{v}, nil
	}
	if _, err := s.expect(OpenParen); err != nil {
		return nil, err
	}
	res := Selector{}
	for {
		start := s.pos
		from, err := s.parseInt()
		if err != nil {
			return nil, err
		}
		if s.peekIs(Hyphen) == false {
			res = append(res, from)
		} else {
			s.pos += 1
			to, err := s.parseInt()
			if err != nil {
				return nil, err
			}
			if to < from {
				return nil, s.errorf(start, "empty zone range %d-%d", from, to)
			}
			expanded := ExpandRange(from, to)
			if len(expanded) == 0 {
				return nil, s.errorf(start, "zone range %d-%d is too large", from, to)
			}
			res = append(res, expanded...)
		}

		if s.peekIs(Comma) == false {
			break
		}
		s.pos += 1
	}
	if _, err := s.expect(CloseParen); err != nil {
		return nil, err
	}
	return res, nil
}

// parseDatetime parses Y-M-D H:M. Day and hour are adjacent INTEGER
// tokens.
func (s *tokenStream) parseDatetime() (time.Time, error) {
	start := s.pos
	fields := make([]int, 5)
	separators := []TokenKind{Hyphen, Hyphen, -1, Colon}
	for i := range fields {
		v, err := s.parseInt()
		if err != nil {
			return time.Time{}, err
		}
		fields[i] = v
		if i < len(separators) && separators[i] >= 0 {
			if _, err := s.expect(separators[i]); err != nil {
				return time.Time{}, err
			}
		}
	}
	year, month, day, hour, minute := fields[0], fields[1], fields[2], fields[3], fields[4]
	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return time.Time{}, s.errorf(start, "invalid date %04d-%02d-%02d %02d:%02d",
			year, month, day, hour, minute)
	}
	res := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	if res.Day() != day || res.Month() != time.Month(month) {
		return time.Time{}, s.errorf(start, "invalid date %04d-%02d-%02d %02d:%02d",
			year, month, day, hour, minute)
	}
	return res, nil
}

// parseDuration parses H:M as a duration.
func (s *tokenStream) parseDuration() (time.Duration, error) {
	start := s.pos
	hour, err := s.parseInt()
	if err != nil {
		return 0, err
	}
	if _, err := s.expect(Colon); err != nil {
		return 0, err
	}
	minute, err := s.parseInt()
	if err != nil {
		return 0, err
	}
	if hour > 23 || minute > 59 {
		return 0, s.errorf(start, "invalid time %02d:%02d", hour, minute)
	}
	return time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute, nil
}
