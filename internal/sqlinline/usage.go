package sqlinline

const QSelectUsageCount = `--sql d7d486ba-b793-410f-b324-8b3e5e0aa56e
select count
from usage_records
where telegram_id = $1::bigint and month = $2::smallint and year = $3::int;
`

const QIncrementUsage = `--sql 74ae558e-561f-4d17-b064-6c6f0f6cb559
insert into usage_records (telegram_id, month, year, count)
values ($1::bigint, $2::smallint, $3::int, 1)
on conflict (telegram_id, month, year) do update set
    count = usage_records.count + 1
returning count;
`

// QTryIncrementUsage returns no row when the stored count already reached the limit ($4).
const QTryIncrementUsage = `--sql 6ff6b636-511e-45c1-bb65-628d5db4343b
insert into usage_records (telegram_id, month, year, count)
select $1::bigint, $2::smallint, $3::int, 1
where $4::int > 0
on conflict (telegram_id, month, year) do update set
    count = usage_records.count + 1
where usage_records.count < $4::int
returning count;
`
