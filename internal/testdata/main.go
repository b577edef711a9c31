package testdata

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Data is a chart with two difficulties over three tempo segments.
const Data = `[metadata]
version=1;
title=Plus Plus;
subtitle=;
artist=Cardboard Box;
credit=khel;
bpms=144@0,72@32,144@48;
preview=16;

[easy]
hit_objects=q@0,w@1,e-i@2,+r:2=4@4,qa@8;

[hard]
hit_objects=q-p@0,w+o:1=2@1,x@1.5,zaq@2;
`

func GetChart() io.Reader {
	return strings.NewReader(Data)
}

// WriteChart writes Data to dir/name and returns its path.
func WriteChart(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); nil != err {
		return "", err
	}
	if err := os.WriteFile(path, []byte(Data), 0o644); nil != err {
		return "", err
	}
	return path, nil
}
