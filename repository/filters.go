package repository

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson"

	"timeclock/models"
	"timeclock/utils"
)

const storedDateRegex = `^\d{2}-\d{2}-\d{4}$`

// isoDateExpr rewrites the stored dd-MM-yyyy "date" field as yyyy-MM-dd
// inside an aggregation expression.
func isoDateExpr() bson.M {
	return bson.M{"$concat": bson.A{
		bson.M{"$substrCP": bson.A{"$date", 6, 4}}, "-",
		bson.M{"$substrCP": bson.A{"$date", 3, 2}}, "-",
		bson.M{"$substrCP": bson.A{"$date", 0, 2}},
	}}
}

// DateBeforeFilter matches documents whose date sorts before beforeISO.
func DateBeforeFilter(beforeISO string) bson.M {
	return bson.M{
		"date":  bson.M{"$regex": storedDateRegex},
		"$expr": bson.M{"$lt": bson.A{isoDateExpr(), beforeISO}},
	}
}

// DateRangeFilter matches an inclusive ISO range; an empty bound is open.
func DateRangeFilter(fromISO, toISO string) bson.M {
	var conds bson.A
	if fromISO != "" {
		conds = append(conds, bson.M{"$gte": bson.A{isoDateExpr(), fromISO}})
	}
	if toISO != "" {
		conds = append(conds, bson.M{"$lte": bson.A{isoDateExpr(), toISO}})
	}
	if len(conds) == 0 {
		return bson.M{}
	}
	return bson.M{
		"date":  bson.M{"$regex": storedDateRegex},
		"$expr": bson.M{"$and": conds},
	}
}

func timesheetQuery(f TimesheetFilter) bson.M {
	q := DateRangeFilter(f.From, f.To)
	if f.Pin != "" {
		q["pin"] = f.Pin
	}
	if f.Date != "" {
		q["date"] = f.Date
	}
	return q
}

// SortTimesheets orders rows by calendar day, then time.
func SortTimesheets(rows []models.Timesheet) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := utils.TimesheetDateToISO(rows[i].Date), utils.TimesheetDateToISO(rows[j].Date)
		if di != dj {
			return di < dj
		}
		return rows[i].Time < rows[j].Time
	})
}
