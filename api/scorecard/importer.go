package scorecard

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/api/auth"
	"PulseboardSaaS/api/constants"
	"PulseboardSaaS/internal/checksum"
	"PulseboardSaaS/internal/config"
	"PulseboardSaaS/internal/kpicsv"
)

// importRequest is the JSON body variant of an import. Exactly one of
// CSVText and KPIs is expected; KPIs carries rows a client already parsed.
type importRequest struct {
	UserID  string             `json:"user_id"`
	CSVText string             `json:"csv_text"`
	KPIs    []kpicsv.ParsedKPI `json:"kpis"`
}

// UploadScorecardData imports KPIs into a scorecard. It accepts a multipart
// upload (.csv, .xlsx or .xls under the "file" field) or a JSON body with
// either raw CSV text or pre-parsed KPIs. The whole batch lands in one
// transaction; a parse that yields zero KPIs is a 400 and touches nothing.
func UploadScorecardData(pgxPool *pgxpool.Pool) http.HandlerFunc {
	store := NewImportStore(pgxPool)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		scorecardID := mux.Vars(r)["id"]
		if scorecardID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "missing scorecard id")
			return
		}

		var (
			userID      string
			kpis        []kpicsv.ParsedKPI
			fingerprint string
		)

		contentType := r.Header.Get(constants.HeaderContentType)
		if strings.HasPrefix(contentType, "multipart/form-data") {
			if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
				return
			}
			userID = r.FormValue("user_id")
			file, header, err := r.FormFile("file")
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "missing file in form data")
				return
			}
			defer file.Close()

			data, err := io.ReadAll(file)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "failed to read uploaded file: "+err.Error())
				return
			}
			fingerprint = checksum.ShortFingerprint(data)

			result, err := parseUpload(header.Filename, data)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			if !result.Success {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyImport+": "+strings.Join(result.Errors, "; "))
				return
			}
			kpis = result.KPIs
		} else {
			var req importRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
				return
			}
			userID = req.UserID
			switch {
			case req.CSVText != "":
				fingerprint = checksum.ShortFingerprint([]byte(req.CSVText))
				result := kpicsv.Parse(req.CSVText)
				if !result.Success {
					api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyImport+": "+strings.Join(result.Errors, "; "))
					return
				}
				kpis = result.KPIs
			case len(req.KPIs) > 0:
				kpis = req.KPIs
			default:
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
				return
			}
		}

		if userID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrUserIDRequired)
			return
		}

		summary, err := ReconcileImport(ctx, store, scorecardID, kpis)
		if err != nil {
			if errors.Is(err, ErrScorecardMissing) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrScorecardNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		notifyImport(summary, auth.UserNameByID(userID), fingerprint)
		api.RespondWithPayload(w, true, "", summary)
	}
}

// parseUpload dispatches an uploaded file to the right reader by extension
// and feeds the resulting rows through the KPI pipeline.
func parseUpload(filename string, data []byte) (kpicsv.ParseResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", "":
		return kpicsv.Parse(string(data)), nil
	case ".xlsx":
		rows, err := readXLSXRows(data)
		if err != nil {
			return kpicsv.ParseResult{}, err
		}
		return kpicsv.ParseFromRows(rows), nil
	case ".xls":
		rows, err := readXLSRows(data)
		if err != nil {
			return kpicsv.ParseResult{}, err
		}
		return kpicsv.ParseFromRows(rows), nil
	}
	return kpicsv.ParseResult{}, errors.New(constants.ErrUnsupportedFile)
}

func readXLSXRows(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New("failed to open xlsx file: " + err.Error())
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	rows, err := xl.GetRows(sheet)
	if err != nil {
		return nil, errors.New("failed to read xlsx rows: " + err.Error())
	}
	return rows, nil
}

func readXLSRows(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, errors.New("failed to open xls file: " + err.Error())
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("xls file has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := 0; j <= row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
