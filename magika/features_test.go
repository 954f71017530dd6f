package magika

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testConfig(begSize, endSize, blockSize int) ModelConfig {
	return ModelConfig{
		BegSize:      begSize,
		EndSize:      endSize,
		BlockSize:    int64(blockSize),
		PaddingToken: 256,
	}
}

func ints(vals ...int32) []int32 { return vals }

func repeat(tok int32, n int) []int32 {
	out := make([]int32, n)
	for i := range out {
		out[i] = tok
	}
	return out
}

func TestExtractFeaturesBasic(t *testing.T) {
	const pad = int32(256)
	cases := []struct {
		name    string
		content string
		cfg     ModelConfig
		want    ModelFeatures
	}{
		{
			name:    "short content padded both sides",
			content: "AB",
			cfg:     testConfig(5, 5, 10),
			want: ModelFeatures{
				Beg: []int32{'A', 'B', pad, pad, pad},
				End: []int32{pad, pad, pad, 'A', 'B'},
			},
		},
		{
			name:    "all whitespace strips to nothing",
			content: "   \t\n  ",
			cfg:     testConfig(4, 4, 10),
			want: ModelFeatures{
				Beg: repeat(pad, 4),
				End: repeat(pad, 4),
			},
		},
		{
			name:    "interior whitespace preserved",
			content: "A AAA",
			cfg:     testConfig(5, 5, 10),
			want: ModelFeatures{
				Beg: ints('A', ' ', 'A', 'A', 'A'),
				End: ints('A', ' ', 'A', 'A', 'A'),
			},
		},
		{
			name:    "leading and trailing null preserved after whitespace strip",
			content: " \x00hi\x00 ",
			cfg:     testConfig(4, 4, 10),
			want: ModelFeatures{
				Beg: ints(0, 'h', 'i', 0),
				End: ints(0, 'h', 'i', 0),
			},
		},
		{
			name:    "content longer than block size strips only outer side per end",
			content: "  leading and trailing  ",
			cfg:     testConfig(4, 4, 8),
			want: ModelFeatures{
				// N=24 > block_size=8: beg reads bytes[0:8)="  leadin"
				// left-stripped to "leadin", first 4 = "lead". end reads
				// bytes[16:24)="ailing  " right-stripped to "ailing",
				// last 4 = "ling".
				Beg: ints('l', 'e', 'a', 'd'),
				End: ints('l', 'i', 'n', 'g'),
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewBufferSeekable([]byte(c.content))
			got, err := ExtractFeatures(s, c.cfg)
			if err != nil {
				t.Fatalf("ExtractFeatures: %v", err)
			}
			if d := cmp.Diff(c.want.Beg, got.Beg); d != "" {
				t.Errorf("Beg mismatch (-want +got):\n%s", d)
			}
			if d := cmp.Diff(c.want.End, got.End); d != "" {
				t.Errorf("End mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestExtractFeaturesExactLengths(t *testing.T) {
	begSize, endSize, blockSize := 8, 8, 16
	cfg := testConfig(begSize, endSize, blockSize)

	sizes := []int{0, 1, 10, begSize - 1, begSize, begSize + 1, endSize - 1, endSize, endSize + 1,
		begSize + endSize - 1, begSize + endSize, begSize + endSize + 1,
		blockSize - 1, blockSize, blockSize + 1,
		2*blockSize - 1, 2 * blockSize, 2*blockSize + 1,
		4*blockSize - 1, 4 * blockSize, 4*blockSize + 1}

	for _, n := range sizes {
		if n < 0 {
			continue
		}
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			content := bytes.Repeat([]byte("x"), n)
			s := NewBufferSeekable(content)
			got, err := ExtractFeatures(s, cfg)
			if err != nil {
				t.Fatalf("ExtractFeatures: %v", err)
			}
			if len(got.Beg) != begSize {
				t.Errorf("len(Beg) = %d, want %d", len(got.Beg), begSize)
			}
			if len(got.End) != endSize {
				t.Errorf("len(End) = %d, want %d", len(got.End), endSize)
			}
		})
	}
}

func TestExtractFeaturesFileVsBufferAgree(t *testing.T) {
	cfg := testConfig(8, 8, 16)
	sizes := []int{0, 1, 10, 15, 16, 17, 31, 32, 33, 63, 64, 65}

	for _, n := range sizes {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			content := bytes.Repeat([]byte(" ab "), n/4+1)[:n]

			buf := NewBufferSeekable(content)
			wantFeat, err := ExtractFeatures(buf, cfg)
			if err != nil {
				t.Fatalf("buffer ExtractFeatures: %v", err)
			}

			dir := t.TempDir()
			path := dir + "/sample"
			if err := os.WriteFile(path, content, 0o600); err != nil {
				t.Fatalf("write file: %v", err)
			}
			f, err := NewFileSeekable(path)
			if err != nil {
				t.Fatalf("NewFileSeekable: %v", err)
			}
			defer f.Close()

			gotFeat, err := ExtractFeatures(f, cfg)
			if err != nil {
				t.Fatalf("file ExtractFeatures: %v", err)
			}

			if d := cmp.Diff(wantFeat, gotFeat); d != "" {
				t.Errorf("file vs buffer mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestExtractFeaturesPaddingInvariantUnderWhitespacePadding(t *testing.T) {
	cfg := testConfig(6, 6, 20)
	base := []byte("hello world")

	baseFeat, err := ExtractFeatures(NewBufferSeekable(base), cfg)
	if err != nil {
		t.Fatal(err)
	}

	padded := append([]byte("   "), base...)
	padded = append(padded, []byte("   ")...)
	paddedFeat, err := ExtractFeatures(NewBufferSeekable(padded), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if d := cmp.Diff(baseFeat, paddedFeat); d != "" {
		t.Errorf("padding whitespace changed features (-base +padded):\n%s", d)
	}
}

