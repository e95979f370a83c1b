package workload

import (
	"fmt"
	"strings"
)

const (
	// Header はワークロードファイルの先頭行
	Header = "operation | key | value"
	// PreambleEnd はプリアンブルの終端を示す行
	PreambleEnd = "end preamble"
)

// Kind はコマンドの種類
type Kind int

const (
	KindWrite Kind = iota
	KindRead
	KindDelete
)

// AllKinds は全コマンド種別（抽選プールの順序）
var AllKinds = []Kind{KindWrite, KindRead, KindDelete}

// Char は出力ファイル上の1文字表現を返す
func (k Kind) Char() string {
	switch k {
	case KindWrite:
		return "w"
	case KindRead:
		return "r"
	case KindDelete:
		return "d"
	default:
		return "?"
	}
}

func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "WRITE"
	case KindRead:
		return "READ"
	case KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ParseKind は1文字表現からKindを解析する
func ParseKind(s string) (Kind, error) {
	switch s {
	case "w":
		return KindWrite, nil
	case "r":
		return KindRead, nil
	case "d":
		return KindDelete, nil
	default:
		return 0, fmt.Errorf("unknown command kind: %q", s)
	}
}

// Command は生成される1操作
// 実装はWrite, Read, Deleteのみ
type Command interface {
	Kind() Kind
	Key() string
	String() string

	command()
}

// Write はキーへの書き込み
type Write struct {
	K     string
	Value string
}

func (c Write) Kind() Kind     { return KindWrite }
func (c Write) Key() string    { return c.K }
func (c Write) String() string { return format(KindWrite, c.K, c.Value) }
func (Write) command()         {}

// Read はキーの読み込み
type Read struct {
	K string
}

func (c Read) Kind() Kind     { return KindRead }
func (c Read) Key() string    { return c.K }
func (c Read) String() string { return format(KindRead, c.K, "") }
func (Read) command()         {}

// Delete はキーの削除
type Delete struct {
	K string
}

func (c Delete) Kind() Kind     { return KindDelete }
func (c Delete) Key() string    { return c.K }
func (c Delete) String() string { return format(KindDelete, c.K, "") }
func (Delete) command()         {}

// READ/DELETEも値の位置に空文字を出すため、行末に空白が残る
func format(kind Kind, key, value string) string {
	return kind.Char() + " " + key + " " + value
}

// ParseLine はコマンド行を解析する
// ヘッダ行とプリアンブル終端行はエラーになる
func ParseLine(line string) (Command, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed command line: %q", line)
	}

	kind, err := ParseKind(parts[0])
	if err != nil {
		return nil, err
	}
	key, value := parts[1], parts[2]
	if key == "" {
		return nil, fmt.Errorf("missing key: %q", line)
	}

	switch kind {
	case KindWrite:
		if value == "" {
			return nil, fmt.Errorf("write without value: %q", line)
		}
		return Write{K: key, Value: value}, nil
	case KindRead:
		return Read{K: key}, nil
	default:
		return Delete{K: key}, nil
	}
}
