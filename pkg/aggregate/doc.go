/*
Package aggregate computes attendance rollups.

Everything here is a pure function of (subjects, entries, limits). Nothing is
cached; callers recompute on every read.

# Counting

For each subject:

	present    = entries with StatusPresent
	absent     = entries with StatusAbsent
	total      = present + absent
	percentage = total > 0 ? round(present/total*100, 2) : 0

Entries marked no-class are neither attendances nor absences and do not count
toward total.

# Severity

	percentage >= upper          good
	lower <= percentage < upper  warning
	percentage < lower           critical

Classification uses the rounded percentage, so a value that displays as
"75.00" is good with the default limits.

# Marks

Days and Today reduce the entries of one date to a Mark: present, absent,
mixed (both present and absent recorded), no-class, or not-recorded.
*/
package aggregate
