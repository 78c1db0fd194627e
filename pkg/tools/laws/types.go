package laws

// Argument structs of the law tools. Field order is the order parameters
// are listed in tools/list and in usage messages.

// GetLawsArgs are the arguments of get_laws (GET /laws).
type GetLawsArgs struct {
	LawID            string   `json:"law_id,omitempty" jsonschema:"description=法令ID（指定時は単一法令の情報を取得）"`
	LawTitle         string   `json:"law_title,omitempty" jsonschema:"description=法令名での検索（部分一致）"`
	LawType          string   `json:"law_type,omitempty" jsonschema:"description=法令種別,enum=Constitution,enum=Act,enum=CabinetOrder,enum=MinisterialOrdinance,enum=Rule"`
	LawNumEra        string   `json:"law_num_era,omitempty" jsonschema:"description=法令番号の元号,enum=Meiji,enum=Taisho,enum=Showa,enum=Heisei,enum=Reiwa"`
	LawNumYear       *int     `json:"law_num_year,omitempty" jsonschema:"description=法令番号の年"`
	Category         string   `json:"category,omitempty" jsonschema:"description=法令カテゴリ"`
	PromulgationDate string   `json:"promulgation_date,omitempty" jsonschema:"description=公布日（YYYY-MM-DD形式）"`
	Asof             string   `json:"asof,omitempty" jsonschema:"description=時点（YYYY-MM-DD形式）。指定日時点の法令を返す"`
	Offset           *int     `json:"offset,omitempty" jsonschema:"description=取得開始位置,minimum=0"`
	Limit            *int     `json:"limit,omitempty" jsonschema:"description=取得する法令数の上限,default=10,minimum=1,maximum=100"`
	ResponseFormat   string   `json:"response_format,omitempty" jsonschema:"description=取得フォーマット,enum=json,enum=xml,default=json"`
	Fields           []string `json:"fields,omitempty" jsonschema:"description=返却するフィールドのドット区切りパス（例: laws.revision_info.law_title）。content_level より優先"`
	ContentLevel     string   `json:"content_level,omitempty" jsonschema:"description=返却する情報量のプリセット。full は全フィールド,enum=full,enum=title_only,enum=summary,enum=basic_info,default=full"`
	CurrentOnly      bool     `json:"current_only,omitempty" jsonschema:"description=現行施行中（CurrentEnforced）の法令のみを返す,default=false"`
}

// GetLawDataArgs are the arguments of get_law_data
// (GET /law_data/{law_revision_id}).
type GetLawDataArgs struct {
	LawRevisionID  string   `json:"law_revision_id" jsonschema:"required,description=法令履歴ID（法令IDまたは法令番号も可）"`
	Elm            string   `json:"elm,omitempty" jsonschema:"description=取得する要素（例: MainProvision-Article_1）"`
	Asof           string   `json:"asof,omitempty" jsonschema:"description=時点（YYYY-MM-DD形式）"`
	ResponseFormat string   `json:"response_format,omitempty" jsonschema:"description=取得フォーマット,enum=json,enum=xml,default=json"`
	Fields         []string `json:"fields,omitempty" jsonschema:"description=返却するフィールドのドット区切りパス（例: revision_info.law_title）。content_level より優先"`
	ContentLevel   string   `json:"content_level,omitempty" jsonschema:"description=返却する情報量のプリセット。full は全フィールド,enum=full,enum=title_only,enum=body_only,enum=summary,enum=basic_info,default=full"`
}

// GetLawRevisionsArgs are the arguments of get_law_revisions
// (GET /law_revisions/{law_id}).
type GetLawRevisionsArgs struct {
	LawID          string   `json:"law_id" jsonschema:"required,description=法令ID"`
	ResponseFormat string   `json:"response_format,omitempty" jsonschema:"description=取得フォーマット,enum=json,enum=xml,default=json"`
	Fields         []string `json:"fields,omitempty" jsonschema:"description=返却するフィールドのドット区切りパス（例: revisions.law_title）。content_level より優先"`
	ContentLevel   string   `json:"content_level,omitempty" jsonschema:"description=返却する情報量のプリセット。full は全フィールド,enum=full,enum=title_only,enum=summary,enum=basic_info,default=full"`
	CurrentOnly    bool     `json:"current_only,omitempty" jsonschema:"description=現行施行中（CurrentEnforced）の履歴のみを返す,default=false"`
}

// SearchKeywordArgs are the arguments of search_keyword (GET /keyword).
type SearchKeywordArgs struct {
	Keyword        string   `json:"keyword" jsonschema:"required,description=検索キーワード"`
	LawType        string   `json:"law_type,omitempty" jsonschema:"description=法令種別,enum=Constitution,enum=Act,enum=CabinetOrder,enum=MinisterialOrdinance,enum=Rule"`
	LawNumEra      string   `json:"law_num_era,omitempty" jsonschema:"description=法令番号の元号,enum=Meiji,enum=Taisho,enum=Showa,enum=Heisei,enum=Reiwa"`
	LawNumYear     *int     `json:"law_num_year,omitempty" jsonschema:"description=法令番号の年"`
	Category       string   `json:"category,omitempty" jsonschema:"description=法令分類"`
	Asof           string   `json:"asof,omitempty" jsonschema:"description=時点（YYYY-MM-DD形式）"`
	Offset         *int     `json:"offset,omitempty" jsonschema:"description=取得開始位置,default=0,minimum=0"`
	Limit          *int     `json:"limit,omitempty" jsonschema:"description=取得数,default=100,minimum=1,maximum=500"`
	SentencesLimit *int     `json:"sentences_limit,omitempty" jsonschema:"description=法令ごとに返す一致文の上限,minimum=1"`
	ResponseFormat string   `json:"response_format,omitempty" jsonschema:"description=取得フォーマット,enum=json,enum=xml,default=json"`
	Fields         []string `json:"fields,omitempty" jsonschema:"description=返却するフィールドのドット区切りパス（例: items.revision_info.law_title）。content_level より優先"`
	ContentLevel   string   `json:"content_level,omitempty" jsonschema:"description=返却する情報量のプリセット。full は全フィールド,enum=full,enum=title_only,enum=summary,enum=basic_info,default=full"`
}

// GetAttachmentArgs are the arguments of get_attachment
// (GET /attachment/{law_revision_id}).
type GetAttachmentArgs struct {
	LawRevisionID string `json:"law_revision_id" jsonschema:"required,description=法令履歴ID"`
	Src           string `json:"src" jsonschema:"required,description=添付ファイルのパス"`
}

// GetLawFileArgs are the arguments of get_law_file
// (GET /law_file/{file_type}/{law_revision_id}).
type GetLawFileArgs struct {
	LawRevisionID string `json:"law_revision_id" jsonschema:"required,description=法令履歴ID"`
	FileType      string `json:"file_type" jsonschema:"required,description=ファイル形式,enum=xml,enum=json,enum=html,enum=rtf,enum=docx"`
	Asof          string `json:"asof,omitempty" jsonschema:"description=時点（YYYY-MM-DD形式）"`
}

// FieldPresetsArgs are the arguments of get_field_presets.
type FieldPresetsArgs struct {
	Kind         string `json:"kind" jsonschema:"required,description=エンドポイント種別,enum=laws,enum=law_data,enum=law_revisions,enum=keyword"`
	ContentLevel string `json:"content_level,omitempty" jsonschema:"description=情報量のプリセット。省略時は全プリセットを返す,enum=full,enum=title_only,enum=body_only,enum=summary,enum=basic_info"`
}

// FieldPresetsResponse lists the field paths behind each content level.
type FieldPresetsResponse struct {
	Kind    string         `json:"kind"`
	Presets []LevelPresets `json:"presets"`
}

// LevelPresets is one content level and its fields. An empty list means
// every field is returned.
type LevelPresets struct {
	Level  string   `json:"level"`
	Fields []string `json:"fields"`
}
