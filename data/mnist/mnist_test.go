package mnist

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeIdx gzips an idx payload into dir under name
func writeIdx(t *testing.T, dir, name string, payload []byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func imagePayload(n int, fill func(i int, img []byte)) []byte {
	b := make([]byte, 16+n*ImgSize*ImgSize)
	binary.BigEndian.PutUint32(b, imagesMagic)
	binary.BigEndian.PutUint32(b[4:], uint32(n))
	binary.BigEndian.PutUint32(b[8:], ImgSize)
	binary.BigEndian.PutUint32(b[12:], ImgSize)
	for i := 0; i < n; i++ {
		fill(i, b[16+i*ImgSize*ImgSize:16+(i+1)*ImgSize*ImgSize])
	}
	return b
}

func labelPayload(labels ...byte) []byte {
	b := make([]byte, 8+len(labels))
	binary.BigEndian.PutUint32(b, labelsMagic)
	binary.BigEndian.PutUint32(b[4:], uint32(len(labels)))
	copy(b[8:], labels)
	return b
}

func TestReadSet(t *testing.T) {
	dir := t.TempDir()
	imgs := writeIdx(t, dir, "imgs.gz", imagePayload(3, func(i int, img []byte) {
		for j := range img {
			img[j] = byte(i)
		}
	}))
	lbls := writeIdx(t, dir, "lbls.gz", labelPayload(7, 0, 9))

	set, err := ReadSet(imgs, lbls)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}
	if set.Labels[0] != 7 || set.Labels[2] != 9 {
		t.Errorf("labels = %v", set.Labels)
	}
	if set.Images[2][0] != 2 || set.Images[2][ImgSize*ImgSize-1] != 2 {
		t.Error("image 2 pixels damaged")
	}

	ds := set.Dataset()
	if ds.Len() != 3 {
		t.Fatalf("dataset Len() = %d", ds.Len())
	}
	x, y := ds.Sample(2)
	if len(x) != ImgSize*ImgSize || x[0] != 2.0/255 {
		t.Errorf("sample 2 pixel 0 = %v, want 2/255", x[0])
	}
	if len(y) != 10 || y[9] != 1 || y[0] != 0 {
		t.Errorf("sample 2 one-hot = %v", y)
	}
}

func TestSmall(t *testing.T) {
	dir := t.TempDir()
	imgs := writeIdx(t, dir, "imgs.gz", imagePayload(1, func(i int, img []byte) {
		// a single bright pixel at row 1, col 2 lands in pool cell (0, 0)
		img[1*ImgSize+2] = 200
	}))
	lbls := writeIdx(t, dir, "lbls.gz", labelPayload(1))
	set, err := ReadSet(imgs, lbls)
	if err != nil {
		t.Fatal(err)
	}
	small := set.Small()
	if small.Len() != 1 {
		t.Fatalf("Len() = %d", small.Len())
	}
	if got := small.Images[0][0]; got != 200 {
		t.Errorf("pool cell (0,0) = %d, want 200", got)
	}
	var rest byte
	for _, p := range small.Images[0][1:] {
		if p > rest {
			rest = p
		}
	}
	if rest != 0 {
		t.Errorf("other pool cells should stay 0, max is %d", rest)
	}
}

func TestParseErrors(t *testing.T) {
	dir := t.TempDir()
	lbls := writeIdx(t, dir, "lbls.gz", labelPayload(1, 2, 3))

	// bad magic
	bad := imagePayload(1, func(i int, img []byte) {})
	binary.BigEndian.PutUint32(bad, 12345)
	badPath := writeIdx(t, dir, "bad.gz", bad)
	if _, err := ReadSet(badPath, lbls); err == nil || !strings.Contains(err.Error(), "magic") {
		t.Errorf("bad magic: err = %v", err)
	}

	// image and label counts disagree
	one := writeIdx(t, dir, "one.gz", imagePayload(1, func(i int, img []byte) {}))
	if _, err := ReadSet(one, lbls); err == nil || !strings.Contains(err.Error(), "labels") {
		t.Errorf("count mismatch: err = %v", err)
	}

	// truncated payload
	short := imagePayload(2, func(i int, img []byte) {})[:100]
	shortPath := writeIdx(t, dir, "short.gz", short)
	if _, err := ReadSet(shortPath, lbls); err == nil {
		t.Error("truncated image file accepted")
	}

	// not gzip at all
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSet(plain, lbls); err == nil {
		t.Error("plain file accepted as gzip")
	}
}

func TestLoadDigestCheck(t *testing.T) {
	dir := t.TempDir()
	// right names, wrong content: the digest check must reject them
	writeIdx(t, dir, trainSetImg, imagePayload(1, func(i int, img []byte) {}))
	writeIdx(t, dir, trainSetVal, labelPayload(0))
	writeIdx(t, dir, inferSetImg, imagePayload(1, func(i int, img []byte) {}))
	writeIdx(t, dir, inferSetVal, labelPayload(0))
	if _, _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "digest") {
		t.Errorf("forged files: err = %v", err)
	}

	// missing files surface as an error too
	if _, _, err := Load(t.TempDir()); err == nil {
		t.Error("empty directory accepted")
	}
}
