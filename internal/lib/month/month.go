// Package month содержит календарную арифметику для продления подписок.
package month

import "time"

// Add прибавляет months календарных месяцев к дате, сохраняя день месяца.
// Если в целевом месяце такого дня нет, дата прижимается к последнему дню
// месяца: 31 января + 1 месяц = 28 (29) февраля, а не 2-3 марта,
// как делает time.AddDate.
func Add(t time.Time, months int) time.Time {
	year, mon, day := t.Date()
	hour, min, sec := t.Clock()

	totalMonths := int(mon) - 1 + months
	targetYear := year + totalMonths/12
	targetMonth := time.Month(totalMonths%12 + 1)
	if totalMonths < 0 {
		// Целочисленное деление в Go округляет к нулю
		targetYear = year + (totalMonths-11)/12
		targetMonth = time.Month((totalMonths%12+12)%12 + 1)
	}

	if last := DaysIn(targetYear, targetMonth); day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце указанного года.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfMonth возвращает первый день календарного месяца даты, 00:00.
func StartOfMonth(t time.Time) time.Time {
	year, mon, _ := t.Date()
	return time.Date(year, mon, 1, 0, 0, 0, 0, t.Location())
}

// StartOfDay возвращает начало календарного дня даты, 00:00.
func StartOfDay(t time.Time) time.Time {
	year, mon, day := t.Date()
	return time.Date(year, mon, day, 0, 0, 0, 0, t.Location())
}
