package sqlinline

const QCreateAppSettings = `--sql ef7ce1b5-d2d9-41e3-a4d6-abc4f3be027e
create table if not exists app_settings (
  key        text primary key,
  value      text not null,
  updated_at timestamptz not null default now()
);
`

const QSelectSetting = `--sql 72e1e0f9-8fbe-4f1c-b4d2-c7eb80cca3d7
select value
from app_settings
where key = $1::text
limit 1;
`

const QUpsertSetting = `--sql 15e1c546-2b1e-4235-bfdc-18080f80e276
insert into app_settings (key, value, updated_at)
values ($1::text, $2::text, now())
on conflict (key) do update set
  value = excluded.value,
  updated_at = now();
`

const QDeleteSettings = `--sql 2bb949db-632e-4563-890e-8ddc0831c23b
delete from app_settings
where key = any($1::text[]);
`
