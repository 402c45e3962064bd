package sqlinline

const QInsertAccountIfAbsent = `--sql cfb5b74f-ffe4-45b0-a1ae-c59a828d8f92
insert into accounts (telegram_id, username, first_name, plan, joined_at)
values ($1::bigint, $2::text, $3::text, $4::text, $5::timestamptz)
on conflict (telegram_id) do nothing;
`

const QSelectAccount = `--sql 9e66694a-ba8f-4088-9d99-2c8028b8284b
select telegram_id, coalesce(username, ''), coalesce(first_name, ''), plan, joined_at
from accounts
where telegram_id = $1::bigint;
`

const QUpdateAccountPlan = `--sql 83ec3d33-348c-49d5-b8b1-9c722523d4e5
update accounts
set plan = $2::text
where telegram_id = $1::bigint
returning telegram_id;
`

const QSelectAccountIDs = `--sql 16a74a39-52d1-44a1-bf7f-4cd2d69a00a6
select telegram_id
from accounts
order by joined_at, telegram_id;
`
