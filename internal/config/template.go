package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/dwhload/pkg/dwhload"
)

// DefaultFileName is the file written by WriteTemplateFile when no path is given.
const DefaultFileName = "dwh.yaml"

// ErrConfigExists is returned when the template target already exists.
var ErrConfigExists = errors.New("config file already exists")

type templateKey struct {
	name    string
	value   string
	comment string
	tag     string
}

type templateSection struct {
	name    string
	comment string
	keys    []templateKey
}

func templateSections() []templateSection {
	return []templateSection{
		{
			name:    "cluster",
			comment: "Warehouse endpoint. db_password may be secretsmanager:<secret-id>.",
			keys: []templateKey{
				{name: "host", value: "<cluster>.<id>.us-west-2.redshift.amazonaws.com"},
				{name: "db_name", value: "dwh"},
				{name: "db_user", value: "dwhuser"},
				{name: "db_password", value: "", comment: "or set DWH_CLUSTER__DB_PASSWORD"},
				{name: "db_port", value: strconv.Itoa(dwhload.DefaultRedshiftPort), tag: "!!int"},
			},
		},
		{
			name:    "iam_role",
			comment: "Role the warehouse assumes to read the sources.",
			keys: []templateKey{
				{name: "arn", value: "arn:aws:iam::<account>:role/dwhRole"},
			},
		},
		{
			name: "s3",
			keys: []templateKey{
				{name: "log_data", value: "s3://udacity-dend/log_data"},
				{name: "log_jsonpath", value: "s3://udacity-dend/log_json_path.json"},
				{name: "song_data", value: "s3://udacity-dend/song_data"},
			},
		},
		{
			name:    "warehouse",
			comment: "Optional. Defaults shown.",
			keys: []templateKey{
				{name: "dialect", value: dwhload.DialectRedshift, comment: "redshift | postgres | duckdb"},
				{name: "region", value: dwhload.DefaultRegion},
				{name: "auth_method", value: dwhload.AuthMethodPassword, comment: "password | aws-iam (postgres only)"},
				{name: "sslmode", value: "", comment: "empty: require on redshift, prefer elsewhere"},
				{name: "load_mode", value: "", comment: "server (redshift) | client; empty picks the dialect default"},
				{name: "path", value: dwhload.DefaultDuckDBPath, comment: "duckdb database file"},
				{name: "strict_staging_keys", value: "false", tag: "!!bool", comment: "declare staging_songs.artist_id as PRIMARY KEY"},
				{name: "insert_batch_size", value: strconv.Itoa(dwhload.DefaultInsertBatchSize), tag: "!!int", comment: "rows per client-side write"},
				{name: "parallel_transforms", value: "false", tag: "!!bool"},
				{name: "assume_role", value: "false", tag: "!!bool", comment: "client loads read the sources as iam_role.arn"},
				{name: "s3_anonymous", value: "false", tag: "!!bool", comment: "read public buckets without signing"},
			},
		},
	}
}

func scalar(value, tag string) *yaml.Node {
	if tag == "" {
		tag = "!!str"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// TemplateNode builds the commented template document.
func TemplateNode() *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, section := range templateSections() {
		body := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range section.keys {
			k := scalar(key.name, "")
			v := scalar(key.value, key.tag)
			v.LineComment = key.comment
			body.Content = append(body.Content, k, v)
		}
		name := scalar(section.name, "")
		name.HeadComment = section.comment
		root.Content = append(root.Content, name, body)
	}
	return &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "dwhload configuration. Every key can be overridden by DWH_<SECTION>__<KEY>.",
		Content:     []*yaml.Node{root},
	}
}

// WriteTemplate encodes the template to w.
func WriteTemplate(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(TemplateNode()); err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	return enc.Close()
}

// WriteTemplateFile writes the template to path. An existing file is left
// untouched unless overwrite is set.
func WriteTemplateFile(path string, overwrite bool) error {
	if path == "" {
		path = DefaultFileName
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTemplate(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
