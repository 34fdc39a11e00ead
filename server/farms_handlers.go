package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Farm is the wire shape the front end expects. Field names mirror the
// list_farms columns, which are Korean identifiers in the database.
type Farm struct {
	ID             *int64     `json:"농장ID"`
	Name           string     `json:"농장명"`
	Region         string     `json:"지역"`
	Badge          string     `json:"뱃지"`
	OwnerID        *int64     `json:"농장주ID"`
	Owner          string     `json:"농장주"`
	FeedCompany    string     `json:"사료회사"`
	ManagerID      *int64     `json:"관리자ID"`
	Manager        string     `json:"관리자"`
	ContractStatus string     `json:"계약상태"`
	ContractStart  *time.Time `json:"계약시작일"`
	ContractEnd    *time.Time `json:"계약종료일"`
}

// farmRequest accepts the incoming body loosely: ids may arrive as numbers or
// numeric strings, dates in either date-only or RFC 3339 form. Anything
// unparseable is stored as NULL rather than rejected.
type farmRequest struct {
	Name           string      `json:"농장명"`
	Region         *string     `json:"지역"`
	Badge          *string     `json:"뱃지"`
	OwnerID        json.Number `json:"농장주ID"`
	Owner          *string     `json:"농장주"`
	FeedCompany    *string     `json:"사료회사"`
	ManagerID      json.Number `json:"관리자ID"`
	Manager        *string     `json:"관리자"`
	ContractStatus *string     `json:"계약상태"`
	ContractStart  string      `json:"계약시작일"`
	ContractEnd    string      `json:"계약종료일"`
}

const farmColumns = `"농장ID", "농장명", "지역", "뱃지", "농장주ID", "농장주", "사료회사", "관리자ID", "관리자", "계약상태", "계약시작일", "계약종료일"`

// ListFarmsHandler returns every farm, ordered by id.
func (s *Server) ListFarmsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		rows, err := s.pool.Query(r.Context(),
			`SELECT `+farmColumns+` FROM list_farms ORDER BY "농장ID" ASC`)
		if err != nil {
			log.Err(err).Msg("Get farms error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}
		defer rows.Close()

		farms := []Farm{}
		for rows.Next() {
			var (
				farm                                                    Farm
				name, region, badge, owner, feed, manager, contractStat *string
			)
			if err := rows.Scan(
				&farm.ID, &name, &region, &badge, &farm.OwnerID, &owner,
				&feed, &farm.ManagerID, &manager, &contractStat,
				&farm.ContractStart, &farm.ContractEnd,
			); err != nil {
				log.Err(err).Msg("Get farms error")
				writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
				return
			}
			farm.Name = orEmpty(name)
			farm.Region = orEmpty(region)
			farm.Badge = orEmpty(badge)
			farm.Owner = orEmpty(owner)
			farm.FeedCompany = orEmpty(feed)
			farm.Manager = orEmpty(manager)
			farm.ContractStatus = orEmpty(contractStat)
			farms = append(farms, farm)
		}
		if err := rows.Err(); err != nil {
			log.Err(err).Msg("Get farms error")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "farms": farms})
	}
}

// AddFarmHandler inserts a new farm.
func (s *Server) AddFarmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		var farm farmRequest
		if err := json.NewDecoder(r.Body).Decode(&farm); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		_, err := s.pool.Exec(r.Context(),
			`INSERT INTO list_farms ("농장명", "지역", "뱃지", "농장주ID", "농장주", "사료회사", "관리자ID", "관리자", "계약상태", "계약시작일", "계약종료일")
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			farm.Name, farm.Region, farm.Badge,
			numberOrNil(farm.OwnerID), farm.Owner, farm.FeedCompany,
			numberOrNil(farm.ManagerID), farm.Manager, farm.ContractStatus,
			parseDateOrNil(farm.ContractStart), parseDateOrNil(farm.ContractEnd),
		)
		if err != nil {
			log.Err(err).Msg("Add farm error")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Farm added"})
	}
}

// UpdateFarmHandler replaces every column of one farm.
func (s *Server) UpdateFarmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		var farm farmRequest
		if err := json.NewDecoder(r.Body).Decode(&farm); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		_, err = s.pool.Exec(r.Context(),
			`UPDATE list_farms
			 SET "농장명"=$1, "지역"=$2, "뱃지"=$3, "농장주ID"=$4, "농장주"=$5, "사료회사"=$6, "관리자ID"=$7, "관리자"=$8, "계약상태"=$9, "계약시작일"=$10, "계약종료일"=$11
			 WHERE "농장ID"=$12`,
			farm.Name, farm.Region, farm.Badge,
			numberOrNil(farm.OwnerID), farm.Owner, farm.FeedCompany,
			numberOrNil(farm.ManagerID), farm.Manager, farm.ContractStatus,
			parseDateOrNil(farm.ContractStart), parseDateOrNil(farm.ContractEnd),
			id,
		)
		if err != nil {
			log.Err(err).Msg("Update farm error")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Farm updated"})
	}
}

// DeleteFarmHandler removes one farm.
func (s *Server) DeleteFarmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.requireDB(w) {
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		if _, err := s.pool.Exec(r.Context(), `DELETE FROM list_farms WHERE "농장ID" = $1`, id); err != nil {
			log.Err(err).Msg("Delete farm error")
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Farm deleted"})
	}
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func numberOrNil(n json.Number) *int64 {
	if n == "" {
		return nil
	}
	v, err := n.Int64()
	if err != nil {
		return nil
	}
	return &v
}

func parseDateOrNil(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
