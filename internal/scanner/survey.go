package scanner

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// Survey summarizes the fact dumps accumulated under a work directory.
type Survey struct {
	FactsDirs int   `json:"facts_dirs"` // directories named nll-facts
	FactFiles int   `json:"fact_files"` // *.facts files anywhere below
	Bytes     int64 `json:"bytes"`      // total size of the fact files
}

// SurveyDir walks root with fs and counts fact directories and files.
// Hidden entries are not descended into.
func SurveyDir(ctx context.Context, fs afs.Service, root string) (*Survey, error) {
	s := &Survey{}
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if strings.HasPrefix(info.Name(), ".") {
			return false, nil
		}
		if info.IsDir() {
			if info.Name() == FactsDirName {
				s.FactsDirs++
			}
			return true, nil
		}
		if strings.HasSuffix(info.Name(), facts.FileExt) {
			s.FactFiles++
			s.Bytes += info.Size()
		}
		return true, nil
	}
	if err := fs.Walk(ctx, root, visitor); err != nil {
		return nil, err
	}
	return s, nil
}
